package scheduler

import (
	"context"
	"fmt"
	"strings"

	"MarketSim/internal/logger"
	"MarketSim/internal/notifier"
	"MarketSim/internal/pipeline"
	"MarketSim/internal/render"

	"github.com/robfig/cron/v3"
)

const helpText = "Available commands:\n• /simulate - run a simulation as of today\n• /params - show the simulation parameters"

// Scheduler re-runs the simulation on a cron schedule and answers chat
// commands.
type Scheduler struct {
	Cron   *cron.Cron
	Runner *pipeline.Runner
	Sink   render.Sink
	Opts   render.Options
	Ctx    context.Context
}

// NewScheduler creates a new Scheduler. Scheduled runs are rendered to sink.
func NewScheduler(ctx context.Context, runner *pipeline.Runner, sink render.Sink, opts render.Options) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Runner: runner,
		Sink:   sink,
		Opts:   opts,
		Ctx:    ctx,
	}
}

// RegisterAll registers the simulation task under spec (six-field cron).
func (s *Scheduler) RegisterAll(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.simulationTask); err != nil {
		return fmt.Errorf("register simulation task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Info("scheduler stopped")
}

// RunNow executes the simulation task immediately (for RUN_ON_START / manual trigger).
func (s *Scheduler) RunNow() error {
	return s.run()
}

func (s *Scheduler) simulationTask() {
	if err := s.run(); err != nil {
		logger.Error("scheduled simulation: %v", err)
	}
}

func (s *Scheduler) run() error {
	logger.Info("running simulation task")
	res, err := s.Runner.Run()
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}
	if err := s.Sink.Render(s.Ctx, res); err != nil {
		return fmt.Errorf("render run %s: %w", res.ID, err)
	}
	logger.Info("simulation %s rendered (%d rows)", res.ID, len(res.Series))
	return nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	name, _, _ := strings.Cut(strings.TrimSpace(command), " ")
	name, _, _ = strings.Cut(name, "@")

	switch strings.ToLower(name) {
	case "/simulate":
		res, err := s.Runner.Run()
		if err != nil {
			logger.Error("command simulate: %v", err)
			return fmt.Sprintf("❌ Simulation failed: %v", err)
		}
		return notifier.FormatReport(res, s.Opts)
	case "/params":
		return notifier.FormatParams(s.Runner.Params, s.Runner.Seed)
	default:
		return helpText
	}
}
