// Package pipeline wires the simulation stages together: business-day
// dates, the random-walk price path, derived statistics and assembly.
package pipeline

import (
	"fmt"
	"time"

	"MarketSim/internal/calculator"
	"MarketSim/internal/calendar"
	"MarketSim/internal/model"
	"MarketSim/internal/simulator"

	"github.com/google/uuid"
)

// Run executes one simulation. It performs no I/O and keeps no state, so it
// is safe to call concurrently; identical arguments give identical series.
func Run(params model.SimulationParameters, seed int64, anchor time.Time) (*model.SimulationResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	dates, err := calendar.Generate(params.NumDays, anchor)
	if err != nil {
		return nil, fmt.Errorf("generate dates: %w", err)
	}

	prices, err := simulator.Simulate(dates, params.StartPrice, params.VolatilityPercent, seed)
	if err != nil {
		return nil, fmt.Errorf("simulate prices: %w", err)
	}

	closes := prices.Prices()
	ma, err := calculator.MovingAverage(closes, params.MAWindow)
	if err != nil {
		return nil, fmt.Errorf("moving average: %w", err)
	}
	returns := calculator.DailyReturns(closes)

	return &model.SimulationResult{
		ID:          uuid.NewString(),
		Params:      params,
		Seed:        seed,
		Anchor:      anchor,
		GeneratedAt: time.Now(),
		Series:      model.MustAssemble(dates, prices, ma, returns),
	}, nil
}

// Runner binds parameters and a seed to a clock so presentation code can
// rerun the simulation "as of today".
type Runner struct {
	Params model.SimulationParameters
	Seed   int64
	Now    func() time.Time
}

// NewRunner creates a Runner anchored on the wall clock.
func NewRunner(params model.SimulationParameters, seed int64) *Runner {
	return &Runner{Params: params, Seed: seed, Now: time.Now}
}

// Run simulates with the runner's parameters.
func (r *Runner) Run() (*model.SimulationResult, error) {
	return r.RunWith(r.Params)
}

// RunWith simulates with params instead of the runner's own, keeping the
// runner's seed and clock.
func (r *Runner) RunWith(params model.SimulationParameters) (*model.SimulationResult, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return Run(params, r.Seed, now())
}
