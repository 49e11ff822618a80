package config

import (
	"fmt"
	"os"
	"strconv"

	"MarketSim/internal/model"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Simulation struct {
		Params        model.SimulationParameters `yaml:",inline"`
		Seed          *int64                     `yaml:"seed"` // nil means model.DefaultSeed
		PreviewRows   int                        `yaml:"preview_rows"`
		HistogramBins int                        `yaml:"histogram_bins"`
	} `yaml:"simulation"`
	Bounds   model.ParameterBounds `yaml:"bounds"`
	Telegram struct {
		Enabled  bool   `yaml:"enabled"`
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Output struct {
		Format string `yaml:"format"` // "text" or "json"
	} `yaml:"output"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	p := &cfg.Simulation.Params
	if v := os.Getenv("MARKETSIM_START_PRICE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("MARKETSIM_START_PRICE: %w", err)
		}
		p.StartPrice = f
	}
	if v := os.Getenv("MARKETSIM_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MARKETSIM_DAYS: %w", err)
		}
		p.NumDays = n
	}
	if v := os.Getenv("MARKETSIM_VOLATILITY"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("MARKETSIM_VOLATILITY: %w", err)
		}
		p.VolatilityPercent = f
	}
	if v := os.Getenv("MARKETSIM_MA_WINDOW"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MARKETSIM_MA_WINDOW: %w", err)
		}
		p.MAWindow = n
	}
	if v := os.Getenv("MARKETSIM_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MARKETSIM_SEED: %w", err)
		}
		cfg.Simulation.Seed = &n
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	def := model.DefaultParameters()
	p := &cfg.Simulation.Params
	if p.StartPrice == 0 {
		p.StartPrice = def.StartPrice
	}
	if p.NumDays == 0 {
		p.NumDays = def.NumDays
	}
	if p.VolatilityPercent == 0 {
		p.VolatilityPercent = def.VolatilityPercent
	}
	if p.MAWindow == 0 {
		p.MAWindow = def.MAWindow
	}
	if cfg.Simulation.Seed == nil {
		seed := model.DefaultSeed
		cfg.Simulation.Seed = &seed
	}
	if cfg.Simulation.PreviewRows == 0 {
		cfg.Simulation.PreviewRows = 5
	}
	if cfg.Simulation.HistogramBins == 0 {
		cfg.Simulation.HistogramBins = 50
	}

	b := &cfg.Bounds
	defB := model.DefaultBounds()
	if b.NumDays == (model.Range{}) {
		b.NumDays = defB.NumDays
	}
	if b.VolatilityPercent == (model.Range{}) {
		b.VolatilityPercent = defB.VolatilityPercent
	}
	if b.MAWindow == (model.Range{}) {
		b.MAWindow = defB.MAWindow
	}

	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = "0 0 18 * * 1-5"
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "text"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// Seed returns the configured simulation seed. An explicit 0 is kept.
func (c *Config) Seed() int64 {
	if c.Simulation.Seed == nil {
		return model.DefaultSeed
	}
	return *c.Simulation.Seed
}

// Validate checks that all required fields are set and the configured
// simulation falls inside the control bounds.
func (c *Config) Validate() error {
	if err := c.Bounds.Check(c.Simulation.Params); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if c.Simulation.PreviewRows < 0 {
		return fmt.Errorf("simulation.preview_rows must not be negative")
	}
	if c.Simulation.HistogramBins < 1 {
		return fmt.Errorf("simulation.histogram_bins must be at least 1")
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}
	switch c.Output.Format {
	case "text", "json", "none":
	default:
		return fmt.Errorf("output.format must be one of: text, json, none")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("logging.format must be one of: json, text")
	}
	return nil
}
