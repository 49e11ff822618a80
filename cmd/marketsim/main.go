package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MarketSim/internal/config"
	"MarketSim/internal/logger"
	"MarketSim/internal/notifier"
	"MarketSim/internal/pipeline"
	"MarketSim/internal/recorder"
	"MarketSim/internal/render"
	"MarketSim/internal/scheduler"
	"MarketSim/internal/server"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	flag.StringVar(&cfgPath, "config", cfgPath, "path to the YAML config file")
	once := flag.Bool("once", false, "run a single simulation and exit")
	flag.Parse()

	// run returns only after its deferred cleanup has closed the recorder.
	if err := run(cfgPath, *once); err != nil {
		logger.Fatal("%v", err)
	}
}

func run(cfgPath string, once bool) error {
	// Load config
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("MarketSim starting...")

	opts := render.Options{
		PreviewRows:   cfg.Simulation.PreviewRows,
		HistogramBins: cfg.Simulation.HistogramBins,
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sinks render.Multi
	switch cfg.Output.Format {
	case "text":
		sinks = append(sinks, render.NewTextSink(os.Stdout, opts))
	case "json":
		sinks = append(sinks, render.NewJSONSink(os.Stdout, opts))
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			logger.Warn("init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()
	sinks = append(sinks, rec)

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.Enabled {
		tn, err = notifier.NewTelegramNotifier(notifier.Config{
			BotToken: cfg.Telegram.BotToken,
			ChatID:   cfg.Telegram.ChatID,
			Options:  opts,
		})
		if err != nil {
			return fmt.Errorf("init telegram notifier: %w", err)
		}
		sinks = append(sinks, tn)
	}

	runner := pipeline.NewRunner(cfg.Simulation.Params, cfg.Seed())
	sched := scheduler.NewScheduler(ctx, runner, sinks, opts)

	if err := sched.RunNow(); err != nil {
		if once {
			return fmt.Errorf("initial simulation: %w", err)
		}
		logger.Error("initial simulation: %v", err)
	}
	if once || (cfg.Server.Addr == "" && tn == nil) {
		return nil
	}

	if err := sched.RegisterAll(cfg.Schedule.Cron); err != nil {
		return fmt.Errorf("register cron task: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		tn.ListenForCommands(ctx, sched.HandleCommand)
		logger.Info("Telegram polling started")
	}

	var srv *server.Server
	if cfg.Server.Addr != "" {
		srv = server.New(server.Config{
			Addr:          cfg.Server.Addr,
			Defaults:      cfg.Simulation.Params,
			Bounds:        cfg.Bounds,
			Seed:          cfg.Seed(),
			HistogramBins: cfg.Simulation.HistogramBins,
			Export:        rec,
		})
		srv.Start()
	}

	logger.Info("MarketSim is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping...")
	if srv != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown: %v", err)
		}
		stop()
	}
	cancel()
	logger.Info("MarketSim stopped")
	return nil
}
