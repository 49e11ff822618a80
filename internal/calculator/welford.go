package calculator

import (
	"math"

	"MarketSim/internal/model"
)

// Welford accumulates a running mean and variance in one pass.
type Welford struct {
	Count int
	Mean  float64
	M2    float64
}

// Add folds x into the running statistics.
func (w *Welford) Add(x float64) {
	w.Count++
	delta := x - w.Mean
	w.Mean += delta / float64(w.Count)
	delta2 := x - w.Mean
	w.M2 += delta * delta2
}

// StdDev returns the sample standard deviation, missing below two samples.
func (w *Welford) StdDev() model.NullFloat {
	if w.Count < 2 {
		return model.Missing()
	}
	return model.Some(math.Sqrt(w.M2 / float64(w.Count-1)))
}

// ReturnStats computes mean and sample standard deviation over the defined
// entries of values.
func ReturnStats(values []model.NullFloat) (mean, stddev model.NullFloat, n int) {
	var w Welford
	for _, v := range values {
		if x, ok := v.Get(); ok {
			w.Add(x)
		}
	}
	if w.Count == 0 {
		return model.Missing(), model.Missing(), 0
	}
	return model.Some(w.Mean), w.StdDev(), w.Count
}
