package calculator

import (
	"errors"
	"fmt"

	"MarketSim/internal/model"
)

// CalculateSMA computes the simple moving average of the trailing period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// MovingAverage computes the rolling simple moving average for every index.
// Index i holds the mean of prices[i-window+1..i]; the first window-1
// entries are missing.
func MovingAverage(prices []float64, window int) ([]model.NullFloat, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: moving average window must be >= 1, got %d", model.ErrInvalidParameter, window)
	}
	out := make([]model.NullFloat, len(prices))
	for i := range prices {
		// Each window is summed afresh so no rounding drift builds up.
		sma, err := CalculateSMA(prices[:i+1], window)
		if err != nil {
			continue
		}
		out[i] = model.Some(sma)
	}
	return out, nil
}
