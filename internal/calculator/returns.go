package calculator

import (
	"fmt"
	"math"

	"MarketSim/internal/model"
)

// PercentChange returns (cur-prev)/prev. A zero previous price or a
// non-finite result is reported as ErrNumeric.
func PercentChange(prev, cur float64) (float64, error) {
	if prev == 0 {
		return 0, fmt.Errorf("%w: previous price is zero", model.ErrNumeric)
	}
	r := (cur - prev) / prev
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, fmt.Errorf("%w: change from %v to %v is not finite", model.ErrNumeric, prev, cur)
	}
	return r, nil
}

// DailyReturns computes period-over-period percentage changes. The first
// entry has no predecessor and is missing; any ErrNumeric step is missing too.
func DailyReturns(prices []float64) []model.NullFloat {
	out := make([]model.NullFloat, len(prices))
	for i := 1; i < len(prices); i++ {
		r, err := PercentChange(prices[i-1], prices[i])
		if err != nil {
			continue
		}
		out[i] = model.Some(r)
	}
	return out
}
