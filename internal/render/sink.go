// Package render hands finished simulations to presentation targets.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"

	"MarketSim/internal/calculator"
	"MarketSim/internal/model"

	json "github.com/goccy/go-json"
)

// Sink consumes a finished simulation.
type Sink interface {
	Render(ctx context.Context, res *model.SimulationResult) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, res *model.SimulationResult) error

func (f SinkFunc) Render(ctx context.Context, res *model.SimulationResult) error { return f(ctx, res) }

// Options control how much of a run is shown.
type Options struct {
	PreviewRows   int
	HistogramBins int
}

// DefaultOptions shows five rows and a 50-bin histogram.
func DefaultOptions() Options {
	return Options{PreviewRows: 5, HistogramBins: calculator.DefaultHistogramBins}
}

// TextSink writes a plain-text report.
type TextSink struct {
	W    io.Writer
	Opts Options
}

// NewTextSink creates a TextSink writing to w.
func NewTextSink(w io.Writer, opts Options) *TextSink {
	return &TextSink{W: w, Opts: opts}
}

func (s *TextSink) Render(_ context.Context, res *model.SimulationResult) error {
	_, err := io.WriteString(s.W, FormatReport(res, s.Opts))
	return err
}

// JSONSink writes the run, its summary and the return histogram as one JSON document.
type JSONSink struct {
	W      io.Writer
	Opts   Options
	Indent bool
}

// NewJSONSink creates a JSONSink writing to w.
func NewJSONSink(w io.Writer, opts Options) *JSONSink {
	return &JSONSink{W: w, Opts: opts, Indent: true}
}

// Document is the JSON shape produced by JSONSink and the dashboard server.
type Document struct {
	*model.SimulationResult
	Summary   *SummaryDoc      `json:"summary"`
	Histogram []calculator.Bin `json:"histogram"`
}

// SummaryDoc is the JSON view of model.SeriesSummary.
type SummaryDoc struct {
	FirstPrice   float64         `json:"first_price"`
	LastPrice    float64         `json:"last_price"`
	LastMA       model.NullFloat `json:"last_moving_avg"`
	High         float64         `json:"high"`
	Low          float64         `json:"low"`
	Position     float64         `json:"position"`
	RSI          float64         `json:"rsi"`
	MeanReturn   model.NullFloat `json:"mean_return"`
	StdDevReturn model.NullFloat `json:"stddev_return"`
	TotalReturn  float64         `json:"total_return"`
}

// NewDocument builds the JSON view of a run.
func NewDocument(res *model.SimulationResult, bins int) *Document {
	s := calculator.Summarize(res.Series)
	return &Document{
		SimulationResult: res,
		Summary: &SummaryDoc{
			FirstPrice:   s.FirstPrice,
			LastPrice:    s.LastPrice,
			LastMA:       s.LastMA,
			High:         s.High,
			Low:          s.Low,
			Position:     s.Position,
			RSI:          s.RSI,
			MeanReturn:   s.MeanReturn,
			StdDevReturn: s.StdDevReturn,
			TotalReturn:  s.TotalReturn,
		},
		Histogram: calculator.Histogram(res.Series.DailyReturns(), bins),
	}
}

func (s *JSONSink) Render(_ context.Context, res *model.SimulationResult) error {
	doc := NewDocument(res, s.Opts.HistogramBins)
	var (
		data []byte
		err  error
	)
	if s.Indent {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	data = append(data, '\n')
	_, err = s.W.Write(data)
	return err
}

// Multi renders to every sink in order and joins their errors.
type Multi []Sink

func (m Multi) Render(ctx context.Context, res *model.SimulationResult) error {
	var errs []error
	for _, s := range m {
		if err := s.Render(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
