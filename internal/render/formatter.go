package render

import (
	"fmt"
	"strings"

	"MarketSim/internal/calculator"
	"MarketSim/internal/model"

	"github.com/shopspring/decimal"
)

const histogramBarWidth = 40

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func fixedOrDash(v model.NullFloat, places int32) string {
	if !v.Valid {
		return "-"
	}
	return fixed(v.Float64, places)
}

func percent(v float64) string {
	return decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

// FormatReport formats a full text report: header, summary, preview and histogram.
func FormatReport(res *model.SimulationResult, opts Options) string {
	var b strings.Builder
	b.WriteString("Financial Time Series Analysis\n")
	b.WriteString(FormatParams(res))
	b.WriteString("\n")
	b.WriteString(FormatSummary(calculator.Summarize(res.Series)))
	b.WriteString("\nSimulated Data Sample\n")
	b.WriteString(FormatPreview(res.Series, opts.PreviewRows))
	b.WriteString("\nHistogram of Daily Returns\n")
	b.WriteString(FormatHistogram(calculator.Histogram(res.Series.DailyReturns(), opts.HistogramBins)))
	return b.String()
}

// FormatParams formats the inputs of a run.
func FormatParams(res *model.SimulationResult) string {
	p := res.Params
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Starting price: %s\n", fixed(p.StartPrice, 2)))
	b.WriteString(fmt.Sprintf("Trading days: %d\n", p.NumDays))
	b.WriteString(fmt.Sprintf("Daily volatility: %s%%\n", fixed(p.VolatilityPercent, 1)))
	b.WriteString(fmt.Sprintf("Moving average window: %d\n", p.MAWindow))
	b.WriteString(fmt.Sprintf("Seed: %d | Anchor: %s\n", res.Seed, res.Anchor.Format("2006-01-02")))
	return b.String()
}

// FormatSummary formats headline statistics.
func FormatSummary(s *model.SeriesSummary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Last price: %s (first %s, total %s)\n", fixed(s.LastPrice, 2), fixed(s.FirstPrice, 2), percent(s.TotalReturn)))
	b.WriteString(fmt.Sprintf("Moving average: %s\n", fixedOrDash(s.LastMA, 2)))
	b.WriteString(fmt.Sprintf("Range: %s - %s (position %s)\n", fixed(s.Low, 2), fixed(s.High, 2), percent(s.Position)))
	b.WriteString(fmt.Sprintf("RSI(%d): %s\n", calculator.RSIPeriod, fixed(s.RSI, 1)))
	if mean, ok := s.MeanReturn.Get(); ok {
		b.WriteString(fmt.Sprintf("Daily return: mean %s, stddev %s (%d days)\n", percent(mean), percentOrDash(s.StdDevReturn), s.DefinedReturn))
	}
	return b.String()
}

func percentOrDash(v model.NullFloat) string {
	if !v.Valid {
		return "-"
	}
	return percent(v.Float64)
}

// FormatPreview formats the first n rows as an aligned table.
func FormatPreview(series model.DerivedSeries, n int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-10s  %12s  %12s  %12s\n", "Date", "Price", "Moving_Avg", "Daily_Return"))
	for _, r := range series.Head(n) {
		b.WriteString(fmt.Sprintf("%-10s  %12s  %12s  %12s\n",
			r.Date.Format("2006-01-02"),
			fixed(r.Price, 4),
			fixedOrDash(r.MovingAverage, 4),
			fixedOrDash(r.DailyReturn, 6),
		))
	}
	return b.String()
}

// FormatHistogram draws bins as horizontal bars scaled to the tallest bin.
func FormatHistogram(bins []calculator.Bin) string {
	if len(bins) == 0 {
		return "(no daily returns)\n"
	}
	peak := 0
	for _, bin := range bins {
		if bin.Count > peak {
			peak = bin.Count
		}
	}

	var b strings.Builder
	for _, bin := range bins {
		width := 0
		if peak > 0 {
			width = bin.Count * histogramBarWidth / peak
		}
		b.WriteString(fmt.Sprintf("%9s %9s | %-*s %d\n",
			fixed(bin.Lower, 4), fixed(bin.Upper, 4), histogramBarWidth, strings.Repeat("#", width), bin.Count))
	}
	return b.String()
}
