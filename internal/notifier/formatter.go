package notifier

import (
	"fmt"
	"html"
	"strings"

	"MarketSim/internal/calculator"
	"MarketSim/internal/model"
	"MarketSim/internal/render"
)

// maxMessageLen is Telegram's limit for one text message.
const maxMessageLen = 4096

const maxChatBins = 20

// FormatReport formats a run as a Telegram HTML message.
func FormatReport(res *model.SimulationResult, opts render.Options) string {
	bins := opts.HistogramBins
	if bins <= 0 || bins > maxChatBins {
		bins = maxChatBins
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>MarketSim</b> | %s\n\n", res.Anchor.Format("2006-01-02")))
	b.WriteString(html.EscapeString(render.FormatParams(res)))
	b.WriteString("\n<b>Summary</b>\n")
	b.WriteString(html.EscapeString(render.FormatSummary(calculator.Summarize(res.Series))))
	b.WriteString("\n<b>Sample</b>\n<pre>")
	b.WriteString(html.EscapeString(render.FormatPreview(res.Series, opts.PreviewRows)))
	b.WriteString("</pre>\n<b>Daily returns</b>\n<pre>")
	b.WriteString(html.EscapeString(render.FormatHistogram(calculator.Histogram(res.Series.DailyReturns(), bins))))
	b.WriteString("</pre>")
	return truncate(b.String(), maxMessageLen)
}

// FormatParams formats the configured parameters as a chat reply.
func FormatParams(p model.SimulationParameters, seed int64) string {
	var b strings.Builder
	b.WriteString("⚙️ <b>Simulation parameters</b>\n\n")
	b.WriteString(fmt.Sprintf("Starting price: %.2f\n", p.StartPrice))
	b.WriteString(fmt.Sprintf("Trading days: %d\n", p.NumDays))
	b.WriteString(fmt.Sprintf("Daily volatility: %.1f%%\n", p.VolatilityPercent))
	b.WriteString(fmt.Sprintf("Moving average window: %d\n", p.MAWindow))
	b.WriteString(fmt.Sprintf("Seed: %d\n", seed))
	return b.String()
}

// truncate cuts s to at most n runes. A cut inside <pre> closes the tag.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	const tail = "…</pre>"
	cut := string(r[:n-len([]rune(tail))])
	if strings.Count(cut, "<pre>") > strings.Count(cut, "</pre>") {
		return cut + tail
	}
	return cut + "…"
}
