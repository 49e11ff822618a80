package simulator

import (
	"math"
	"sync"
	"testing"
	"time"

	"MarketSim/internal/calendar"
	"MarketSim/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anchor = time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

func dates(t *testing.T, n int) model.DateSequence {
	t.Helper()
	d, err := calendar.Generate(n, anchor)
	require.NoError(t, err)
	return d
}

func TestSimulate_Deterministic(t *testing.T) {
	d := dates(t, 252)
	a, err := Simulate(d, 100, 1.0, 42)
	require.NoError(t, err)
	b, err := Simulate(d, 100, 1.0, 42)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Simulate(d, 100, 1.0, 7)
	require.NoError(t, err)
	assert.NotEqual(t, a.Prices(), c.Prices())
}

func TestSimulate_ConcurrentCallsAgree(t *testing.T) {
	d := dates(t, 300)
	want, err := Simulate(d, 50, 2.5, 42)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]model.PriceSeries, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Simulate(d, 50, 2.5, 42)
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestSimulate_MatchesCumulativeLogReturns(t *testing.T) {
	d := dates(t, 20)
	prices, err := Simulate(d, 100, 1.5, 42)
	require.NoError(t, err)
	returns, err := LogReturns(20, 1.5, 42)
	require.NoError(t, err)

	cum := 0.0
	for i, p := range prices {
		cum += returns[i]
		assert.Equal(t, d[i], p.Date)
		assert.InDelta(t, 100*math.Exp(cum), p.Price, 1e-9)
	}
	// The first price is not the start price; it already moved.
	assert.NotEqual(t, 100.0, prices[0].Price)
}

func TestSimulate_PricesPositiveUnderExtremeVolatility(t *testing.T) {
	d := dates(t, 500)
	for _, vol := range []float64{0.1, 5, 50, 500} {
		prices, err := Simulate(d, 1, vol, 42)
		require.NoError(t, err)
		for _, p := range prices {
			assert.Greater(t, p.Price, 0.0, "vol=%v", vol)
		}
	}

	_, err := Simulate(d, 100, 10000, 42)
	require.ErrorIs(t, err, model.ErrNumeric)
	assert.Contains(t, err.Error(), "price at index")
}

func TestSimulate_ZeroVolatilityIsFlat(t *testing.T) {
	prices, err := Simulate(dates(t, 10), 123.45, 0, 42)
	require.NoError(t, err)
	for _, p := range prices {
		assert.Equal(t, 123.45, p.Price)
	}
}

func TestSimulate_InvalidParameters(t *testing.T) {
	d := dates(t, 5)
	cases := []struct {
		price, vol float64
	}{
		{0, 1},
		{-10, 1},
		{math.NaN(), 1},
		{100, -0.5},
		{100, math.Inf(1)},
	}
	for _, c := range cases {
		_, err := Simulate(d, c.price, c.vol, 42)
		assert.ErrorIs(t, err, model.ErrInvalidParameter, "price=%v vol=%v", c.price, c.vol)
	}
}

func TestLogReturns_Spread(t *testing.T) {
	returns, err := LogReturns(20000, 2.0, 42)
	require.NoError(t, err)

	var sum, sumSq float64
	for _, r := range returns {
		sum += r
		sumSq += r * r
	}
	n := float64(len(returns))
	mean := sum / n
	std := math.Sqrt(sumSq/n - mean*mean)
	assert.InDelta(t, 0, mean, 0.001)
	assert.InDelta(t, 0.02, std, 0.001)
}
