package recorder

import (
	"context"

	"MarketSim/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) Render(_ context.Context, _ *model.SimulationResult) error { return nil }
func (n *NoopRecorder) Close() error                                             { return nil }
