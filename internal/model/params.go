package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultSeed is the seed used when the caller does not pick one.
const DefaultSeed int64 = 42

// SimulationParameters are the validated inputs of one simulation run.
type SimulationParameters struct {
	StartPrice        float64 `json:"start_price" yaml:"start_price" validate:"gt=0"`
	NumDays           int     `json:"num_days" yaml:"num_days" validate:"gte=1"`
	VolatilityPercent float64 `json:"volatility_percent" yaml:"volatility_percent" validate:"gte=0"`
	MAWindow          int     `json:"ma_window" yaml:"ma_window" validate:"gte=1"`
}

// DefaultParameters mirrors the default positions of the dashboard controls.
func DefaultParameters() SimulationParameters {
	return SimulationParameters{
		StartPrice:        100.0,
		NumDays:           252,
		VolatilityPercent: 1.0,
		MAWindow:          10,
	}
}

var validate = validator.New()

// Validate checks the parameters against the simulation's hard limits.
// A window wider than the series is allowed; it just yields no averages.
func (p SimulationParameters) Validate() error {
	if math.IsNaN(p.StartPrice) || math.IsInf(p.StartPrice, 0) {
		return fmt.Errorf("%w: start price must be finite, got %v", ErrInvalidParameter, p.StartPrice)
	}
	if math.IsNaN(p.VolatilityPercent) || math.IsInf(p.VolatilityPercent, 0) {
		return fmt.Errorf("%w: volatility must be finite, got %v", ErrInvalidParameter, p.VolatilityPercent)
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidParameter, describe(err))
	}
	return nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		var rule string
		switch fe.Tag() {
		case "gt":
			rule = "must be > " + fe.Param()
		case "gte":
			rule = "must be >= " + fe.Param()
		default:
			rule = "failed " + fe.Tag()
		}
		msgs = append(msgs, fmt.Sprintf("%s %s, got %v", fieldName(fe.Field()), rule, fe.Value()))
	}
	return strings.Join(msgs, "; ")
}

func fieldName(f string) string {
	switch f {
	case "StartPrice":
		return "start price"
	case "NumDays":
		return "number of days"
	case "VolatilityPercent":
		return "volatility percent"
	case "MAWindow":
		return "moving average window"
	}
	return f
}

// Range is an inclusive numeric interval.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// ParameterBounds are the ranges offered by the user-facing controls.
// StartPrice only has a lower bound.
type ParameterBounds struct {
	MinStartPrice     float64 `yaml:"min_start_price" json:"min_start_price"`
	NumDays           Range   `yaml:"num_days" json:"num_days"`
	VolatilityPercent Range   `yaml:"volatility_percent" json:"volatility_percent"`
	MAWindow          Range   `yaml:"ma_window" json:"ma_window"`
}

// DefaultBounds returns the stock control ranges.
func DefaultBounds() ParameterBounds {
	return ParameterBounds{
		MinStartPrice:     0,
		NumDays:           Range{Min: 100, Max: 500},
		VolatilityPercent: Range{Min: 0.1, Max: 5.0},
		MAWindow:          Range{Min: 5, Max: 30},
	}
}

// Check rejects parameters outside the control ranges. Values are never clamped.
func (b ParameterBounds) Check(p SimulationParameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.StartPrice <= b.MinStartPrice {
		return fmt.Errorf("%w: start price must be > %v, got %v", ErrInvalidParameter, b.MinStartPrice, p.StartPrice)
	}
	if !b.NumDays.Contains(float64(p.NumDays)) {
		return fmt.Errorf("%w: number of days must be in [%v, %v], got %d", ErrInvalidParameter, b.NumDays.Min, b.NumDays.Max, p.NumDays)
	}
	if !b.VolatilityPercent.Contains(p.VolatilityPercent) {
		return fmt.Errorf("%w: volatility percent must be in [%v, %v], got %v", ErrInvalidParameter, b.VolatilityPercent.Min, b.VolatilityPercent.Max, p.VolatilityPercent)
	}
	if !b.MAWindow.Contains(float64(p.MAWindow)) {
		return fmt.Errorf("%w: moving average window must be in [%v, %v], got %d", ErrInvalidParameter, b.MAWindow.Min, b.MAWindow.Max, p.MAWindow)
	}
	return nil
}
