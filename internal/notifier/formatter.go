package notifier

import (
	"fmt"
	"strings"

	"PatternSentinel/internal/model"
	"PatternSentinel/internal/scanner"
)

// FormatScanReport renders the results of a full universe scan into a Telegram
// message. Patterns arrive pre-sorted by the scanner.
func FormatScanReport(patterns []*model.ScoredPattern, stats scanner.Stats, when string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>PatternSentinel Scan</b> | %s\n", when))
	b.WriteString(fmt.Sprintf("Scanned %d | patterns %d | surfaced %d | errors %d\n\n",
		stats.Scanned, stats.Found, stats.Surfaced, stats.Errors))

	if len(patterns) == 0 {
		b.WriteString("No double tops cleared the reporting bar this run.")
		return b.String()
	}

	for _, p := range patterns {
		b.WriteString(FormatPattern(p))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatPattern renders one scored double top.
func FormatPattern(p *model.ScoredPattern) string {
	var b strings.Builder

	icon := "🔶" // forming
	if p.Status == model.StatusConfirmed {
		icon = "🔻"
	}
	b.WriteString(fmt.Sprintf("%s <b>%s</b> (%s) — %s, score %d/6, confidence %.0f%%\n",
		icon, p.Symbol, p.AssetType, p.Status, p.Score, p.ConfidencePct))

	c := p.Candidate
	b.WriteString(fmt.Sprintf("  Peaks: %.2f (%s) / %.2f (%s), %d bars apart, diff %.1f%%\n",
		c.Peak1.Price, c.Peak1.Time.Format("01-02"),
		c.Peak2.Price, c.Peak2.Time.Format("01-02"),
		c.CandleDistance, c.PriceDiffPct))
	b.WriteString(fmt.Sprintf("  Neckline: %.2f (trough depth %.1f%%) | price %.2f | target %.2f\n",
		p.Neckline, c.TroughDepthPct, p.CurrentPrice, p.PriceTarget))

	if p.Divergence.IsBearishDivergence {
		b.WriteString(fmt.Sprintf("  RSI divergence: %.1f → %.1f (−%.1f)\n",
			p.Divergence.Peak1RSI, p.Divergence.Peak2RSI, p.Divergence.Diff))
	}

	var overbought []string
	for _, tf := range model.AllTimeframes {
		if p.TimeframeOverbought[tf] {
			overbought = append(overbought, fmt.Sprintf("%s %.0f", tf, p.RSIByTimeframe[tf]))
		}
	}
	if len(overbought) > 0 {
		b.WriteString("  Overbought: " + strings.Join(overbought, ", ") + "\n")
	}
	if p.VolumeDeclinePct > 0 {
		b.WriteString(fmt.Sprintf("  Volume decline: %.0f%%\n", p.VolumeDeclinePct))
	}
	return b.String()
}

// FormatHelp lists the commands the bot understands.
func FormatHelp() string {
	return strings.Join([]string{
		"🤖 <b>PatternSentinel</b>",
		"",
		"/scan — run a full scan now",
		"/last — show the last scan report",
		"/help — this message",
	}, "\n")
}
