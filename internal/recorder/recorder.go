package recorder

import (
	"time"

	"MarketSim/internal/model"
	"MarketSim/internal/render"
)

// RunRecord is one stored simulation run.
type RunRecord struct {
	ID          string
	Params      model.SimulationParameters
	Seed        int64
	Anchor      time.Time
	GeneratedAt time.Time
	Rows        int
}

// Recorder exports simulation runs for later analysis. It is a render.Sink;
// the simulation never reads its own history back.
type Recorder interface {
	render.Sink
	Close() error
}
