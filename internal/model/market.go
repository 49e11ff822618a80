package model

import "time"

// DateSequence is an ordered run of business-day dates.
type DateSequence []time.Time

// PricePoint is a single simulated close.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// PriceSeries holds the simulated path, one point per date.
type PriceSeries []PricePoint

// Prices extracts the price column.
func (s PriceSeries) Prices() []float64 {
	prices := make([]float64, len(s))
	for i, p := range s {
		prices[i] = p.Price
	}
	return prices
}

// Dates extracts the date column.
func (s PriceSeries) Dates() DateSequence {
	dates := make(DateSequence, len(s))
	for i, p := range s {
		dates[i] = p.Date
	}
	return dates
}

// Row is one aligned entry of the derived series.
type Row struct {
	Date          time.Time `json:"date"`
	Price         float64   `json:"price"`
	MovingAverage NullFloat `json:"moving_avg"`
	DailyReturn   NullFloat `json:"daily_return"`
}

// DerivedSeries is the output table handed to presentation sinks.
type DerivedSeries []Row

// DailyReturns extracts the daily return column.
func (s DerivedSeries) DailyReturns() []NullFloat {
	out := make([]NullFloat, len(s))
	for i, r := range s {
		out[i] = r.DailyReturn
	}
	return out
}

// Prices extracts the price column.
func (s DerivedSeries) Prices() []float64 {
	out := make([]float64, len(s))
	for i, r := range s {
		out[i] = r.Price
	}
	return out
}

// Head returns at most n leading rows.
func (s DerivedSeries) Head(n int) DerivedSeries {
	if n < 0 {
		n = 0
	}
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}
