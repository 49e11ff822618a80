package pipeline

import (
	"sync"
	"testing"
	"time"

	"MarketSim/internal/calendar"
	"MarketSim/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anchor = time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC)

func TestRun_EndToEndScenario(t *testing.T) {
	params := model.SimulationParameters{StartPrice: 100, NumDays: 5, VolatilityPercent: 1, MAWindow: 2}
	res, err := Run(params, 42, anchor)
	require.NoError(t, err)
	require.Len(t, res.Series, 5)

	s := res.Series
	assert.True(t, calendar.IsBusinessDay(s[0].Date))
	for i := 1; i < len(s); i++ {
		assert.Equal(t, nextBusinessDay(s[i-1].Date), s[i].Date, "index %d", i)
	}

	assert.False(t, s[0].MovingAverage.Valid)
	require.True(t, s[1].MovingAverage.Valid)
	assert.InDelta(t, (s[0].Price+s[1].Price)/2, s[1].MovingAverage.Float64, 1e-9)

	assert.False(t, s[0].DailyReturn.Valid)
	require.True(t, s[1].DailyReturn.Valid)
	assert.InDelta(t, (s[1].Price-s[0].Price)/s[0].Price, s[1].DailyReturn.Float64, 1e-9)

	assert.Equal(t, params, res.Params)
	assert.Equal(t, int64(42), res.Seed)
	assert.NotEmpty(t, res.ID)
}

func nextBusinessDay(d time.Time) time.Time {
	d = d.AddDate(0, 0, 1)
	for !calendar.IsBusinessDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func TestRun_Deterministic(t *testing.T) {
	params := model.DefaultParameters()
	a, err := Run(params, model.DefaultSeed, anchor)
	require.NoError(t, err)
	b, err := Run(params, model.DefaultSeed, anchor)
	require.NoError(t, err)
	assert.Equal(t, a.Series, b.Series)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestRun_ConcurrentRunsAgree(t *testing.T) {
	params := model.DefaultParameters()
	want, err := Run(params, 42, anchor)
	require.NoError(t, err)

	var wg sync.WaitGroup
	got := make([]model.DerivedSeries, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := Run(params, 42, anchor)
			if err == nil {
				got[i] = res.Series
			}
		}(i)
	}
	wg.Wait()
	for _, s := range got {
		assert.Equal(t, want.Series, s)
	}
}

func TestRun_LengthEqualsNumDays(t *testing.T) {
	for _, n := range []int{1, 7, 100, 252, 500} {
		params := model.SimulationParameters{StartPrice: 50, NumDays: n, VolatilityPercent: 2, MAWindow: 5}
		res, err := Run(params, 1, anchor)
		require.NoError(t, err)
		assert.Len(t, res.Series, n)
	}
}

func TestRun_WindowEqualsNumDays(t *testing.T) {
	params := model.SimulationParameters{StartPrice: 100, NumDays: 10, VolatilityPercent: 1, MAWindow: 10}
	res, err := Run(params, 42, anchor)
	require.NoError(t, err)
	for i, row := range res.Series {
		assert.Equal(t, i == 9, row.MovingAverage.Valid, "index %d", i)
	}
}

func TestRun_SingleDay(t *testing.T) {
	params := model.SimulationParameters{StartPrice: 100, NumDays: 1, VolatilityPercent: 1, MAWindow: 1}
	res, err := Run(params, 42, anchor)
	require.NoError(t, err)
	require.Len(t, res.Series, 1)
	row := res.Series[0]
	assert.False(t, row.DailyReturn.Valid)
	require.True(t, row.MovingAverage.Valid)
	assert.Equal(t, row.Price, row.MovingAverage.Float64)

	params.MAWindow = 3
	res, err = Run(params, 42, anchor)
	require.NoError(t, err)
	assert.False(t, res.Series[0].MovingAverage.Valid)
}

func TestRun_InvalidParameters(t *testing.T) {
	bad := []model.SimulationParameters{
		{StartPrice: 0, NumDays: 5, VolatilityPercent: 1, MAWindow: 2},
		{StartPrice: 100, NumDays: 0, VolatilityPercent: 1, MAWindow: 2},
		{StartPrice: 100, NumDays: 5, VolatilityPercent: -1, MAWindow: 2},
		{StartPrice: 100, NumDays: 5, VolatilityPercent: 1, MAWindow: 0},
	}
	for _, p := range bad {
		_, err := Run(p, 42, anchor)
		assert.ErrorIs(t, err, model.ErrInvalidParameter, "%+v", p)
	}
}

func TestRun_PriceOverflowIsNumericError(t *testing.T) {
	params := model.SimulationParameters{StartPrice: 100, NumDays: 500, VolatilityPercent: 10000, MAWindow: 10}
	require.NoError(t, params.Validate())

	res, err := Run(params, model.DefaultSeed, anchor)
	assert.ErrorIs(t, err, model.ErrNumeric)
	assert.Nil(t, res)
}

func TestRunner_UsesClock(t *testing.T) {
	r := NewRunner(model.SimulationParameters{StartPrice: 10, NumDays: 3, VolatilityPercent: 1, MAWindow: 2}, 42)
	r.Now = func() time.Time { return anchor }

	res, err := r.Run()
	require.NoError(t, err)
	assert.Equal(t, anchor, res.Anchor)

	direct, err := Run(r.Params, 42, anchor)
	require.NoError(t, err)
	assert.Equal(t, direct.Series, res.Series)

	other := r.Params
	other.NumDays = 6
	res, err = r.RunWith(other)
	require.NoError(t, err)
	assert.Len(t, res.Series, 6)
}
