// Package simulator turns normally distributed log-returns into a price path.
//
// Every call owns its generator: a PCG (math/rand/v2) seeded with
// (uint64(seed), 0). Returns are drawn with NormFloat64 scaled by
// volatilityPercent/100, one draw per date in date order, so identical
// inputs reproduce bit-identical paths on any goroutine.
package simulator

import (
	"fmt"
	"math"
	"math/rand/v2"

	"MarketSim/internal/model"
)

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

// LogReturns draws n i.i.d. N(0, volatilityPercent/100) samples.
func LogReturns(n int, volatilityPercent float64, seed int64) ([]float64, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: sample count must be >= 0, got %d", model.ErrInvalidParameter, n)
	}
	if err := checkVolatility(volatilityPercent); err != nil {
		return nil, err
	}

	sigma := volatilityPercent / 100
	r := newRand(seed)
	returns := make([]float64, n)
	for i := range returns {
		returns[i] = r.NormFloat64() * sigma
	}
	return returns, nil
}

// Simulate prices each date as startPrice * exp(cumulative log-return).
// The first price already includes the first draw. A path that overflows
// or underflows float64 fails with ErrNumeric.
func Simulate(dates model.DateSequence, startPrice, volatilityPercent float64, seed int64) (model.PriceSeries, error) {
	if startPrice <= 0 || math.IsNaN(startPrice) || math.IsInf(startPrice, 0) {
		return nil, fmt.Errorf("%w: start price must be > 0, got %v", model.ErrInvalidParameter, startPrice)
	}
	returns, err := LogReturns(len(dates), volatilityPercent, seed)
	if err != nil {
		return nil, err
	}

	series := make(model.PriceSeries, len(dates))
	cum := 0.0
	for i, d := range dates {
		cum += returns[i]
		price := startPrice * math.Exp(cum)
		if price == 0 || math.IsInf(price, 0) {
			return nil, fmt.Errorf("%w: price at index %d left float64 range (cumulative log-return %v)", model.ErrNumeric, i, cum)
		}
		series[i] = model.PricePoint{Date: d, Price: price}
	}
	return series, nil
}

func checkVolatility(v float64) error {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: volatility percent must be >= 0, got %v", model.ErrInvalidParameter, v)
	}
	return nil
}
