package model

import (
	"fmt"
	"time"
)

// SimulationResult is one finished run, ready for presentation sinks.
type SimulationResult struct {
	ID          string               `json:"id"`
	Params      SimulationParameters `json:"params"`
	Seed        int64                `json:"seed"`
	Anchor      time.Time            `json:"anchor"`
	GeneratedAt time.Time            `json:"generated_at"`
	Series      DerivedSeries        `json:"series"`
}

// Assemble zips the four aligned columns into a DerivedSeries.
func Assemble(dates DateSequence, prices PriceSeries, movingAverages, dailyReturns []NullFloat) (DerivedSeries, error) {
	n := len(dates)
	if len(prices) != n {
		return nil, fmt.Errorf("%w: %d prices for %d dates", ErrLengthMismatch, len(prices), n)
	}
	if len(movingAverages) != n {
		return nil, fmt.Errorf("%w: %d moving averages for %d dates", ErrLengthMismatch, len(movingAverages), n)
	}
	if len(dailyReturns) != n {
		return nil, fmt.Errorf("%w: %d daily returns for %d dates", ErrLengthMismatch, len(dailyReturns), n)
	}

	series := make(DerivedSeries, n)
	for i := range dates {
		series[i] = Row{
			Date:          dates[i],
			Price:         prices[i].Price,
			MovingAverage: movingAverages[i],
			DailyReturn:   dailyReturns[i],
		}
	}
	return series, nil
}

// MustAssemble is Assemble for callers that built the columns themselves;
// a mismatch there is a bug, so it panics.
func MustAssemble(dates DateSequence, prices PriceSeries, movingAverages, dailyReturns []NullFloat) DerivedSeries {
	series, err := Assemble(dates, prices, movingAverages, dailyReturns)
	if err != nil {
		panic(err)
	}
	return series
}
