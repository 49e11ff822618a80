package calculator

import (
	"math"

	"MarketSim/internal/model"
)

// DefaultHistogramBins is the bin count used for daily-return charts.
const DefaultHistogramBins = 50

// Bin is one equal-width histogram bucket covering [Lower, Upper).
// The last bin also includes its upper edge.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram bins the defined entries of values into at most maxBins
// equal-width buckets spanning [min, max]. Missing entries are skipped.
// When every value is equal a single bin is returned.
func Histogram(values []model.NullFloat, maxBins int) []Bin {
	if maxBins <= 0 {
		maxBins = DefaultHistogramBins
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	defined := make([]float64, 0, len(values))
	for _, v := range values {
		x, ok := v.Get()
		if !ok {
			continue
		}
		defined = append(defined, x)
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if len(defined) == 0 {
		return nil
	}
	if lo == hi {
		return []Bin{{Lower: lo, Upper: hi, Count: len(defined)}}
	}

	n := float64(maxBins)
	// pos maps x onto [0, n]. Spans too wide or too narrow for a finite,
	// non-zero bin width are measured in halves or as a fraction instead.
	width := (hi - lo) / n
	pos := func(x float64) float64 { return (x - lo) / width }
	switch {
	case math.IsInf(hi-lo, 0):
		pos = func(x float64) float64 { return (x/2 - lo/2) / (hi/2 - lo/2) * n }
	case width == 0 || math.IsInf(width, 0):
		pos = func(x float64) float64 { return (x - lo) / (hi - lo) * n }
	}

	bins := make([]Bin, maxBins)
	for i := range bins {
		bins[i].Lower = edge(lo, hi, float64(i)/n)
		bins[i].Upper = edge(lo, hi, float64(i+1)/n)
	}
	bins[0].Lower = lo
	bins[maxBins-1].Upper = hi

	for _, x := range defined {
		idx := int(pos(x))
		idx = max(0, min(idx, maxBins-1))
		bins[idx].Count++
	}
	return bins
}

// edge interpolates between lo and hi without forming hi-lo.
func edge(lo, hi, f float64) float64 {
	return lo*(1-f) + hi*f
}
