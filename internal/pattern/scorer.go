package pattern

import (
	"PatternSentinel/internal/calculator"
	"PatternSentinel/internal/config"
	"PatternSentinel/internal/model"
)

// Scorer aggregates the six one-point signals into the final 0-6 score and
// derives the confidence percentage from pattern-quality sub-metrics.
type Scorer struct {
	overbought         float64
	volumeDeclinePct   float64
	volumeBaselineBars int
}

// NewScorer creates a Scorer from the RSI and scoring configuration.
func NewScorer(rsiCfg config.RSIConfig, scoringCfg config.ScoringConfig) *Scorer {
	return &Scorer{
		overbought:         rsiCfg.OverboughtThreshold,
		volumeDeclinePct:   scoringCfg.VolumeDeclineThresholdPct,
		volumeBaselineBars: 20,
	}
}

// OverboughtFlags reports, per timeframe, whether the latest RSI exceeds the
// overbought threshold.
func (s *Scorer) OverboughtFlags(rsiByTF map[model.Timeframe]float64) map[model.Timeframe]bool {
	flags := make(map[model.Timeframe]bool, len(rsiByTF))
	for tf, v := range rsiByTF {
		flags[tf] = v > s.overbought
	}
	return flags
}

// Score sums the six independent checks. Each contributes exactly one point,
// so evaluation order never affects the result. The candidate itself is the
// floor point: reaching the scorer means validation passed.
func (s *Scorer) Score(c *model.PatternCandidate, div model.DivergenceResult, flags map[model.Timeframe]bool, volumeDeclinePct float64) int {
	checks := []func() bool{
		func() bool { return c != nil },
		func() bool { return div.IsBearishDivergence },
		func() bool { return flags[model.TimeframeDaily] },
		func() bool { return flags[model.TimeframeWeekly] },
		func() bool { return flags[model.TimeframeMonthly] },
		func() bool { return volumeDeclinePct >= s.volumeDeclinePct },
	}
	score := 0
	for _, check := range checks {
		if check() {
			score++
		}
	}
	return score
}

// Confidence derives a 0-100 quality percentage from how tightly the
// candidate sits within its thresholds plus the volume behavior around the
// peaks. It is a weighted normalization for ranking, not a probability.
func (s *Scorer) Confidence(c *model.PatternCandidate, score int, volumes []float64) float64 {
	pts := 0.0

	// Price similarity, up to 25: tighter peaks score higher.
	switch {
	case c.PriceDiffPct < 1:
		pts += 25
	case c.PriceDiffPct < 2:
		pts += 20
	case c.PriceDiffPct < 3:
		pts += 15
	case c.PriceDiffPct < 5:
		pts += 10
	default:
		pts += 5
	}

	// Trough depth, up to 25.
	switch {
	case c.TroughDepthPct > 15:
		pts += 25
	case c.TroughDepthPct > 12:
		pts += 20
	case c.TroughDepthPct > 10:
		pts += 15
	case c.TroughDepthPct > 8:
		pts += 10
	case c.TroughDepthPct > 5:
		pts += 8
	case c.TroughDepthPct > 3:
		pts += 5
	}

	// Volume behavior, up to 20: elevated volume into peak1 and fading volume
	// into peak2 are the exhaustion signature.
	if len(volumes) > c.Peak2.Index {
		vol1 := volumes[c.Peak1.Index]
		vol2 := volumes[c.Peak2.Index]
		if avg, err := calculator.SMA(volumes[:c.Peak1.Index], s.volumeBaselineBars); err == nil && avg > 0 {
			if vol1 > avg*1.2 {
				pts += 8
			} else if vol1 > avg {
				pts += 4
			}
		}
		if vol2 < vol1 {
			pts += 7
		}
		if vol1 > 0 && (vol1-vol2)/vol1*100 > s.volumeDeclinePct {
			pts += 5
		}
	}

	// Time spacing, up to 15: well-separated peaks make cleaner patterns.
	switch {
	case c.CandleDistance >= 20 && c.CandleDistance <= 60:
		pts += 15
	case c.CandleDistance >= 15 && c.CandleDistance <= 80:
		pts += 12
	case c.CandleDistance >= 10:
		pts += 8
	default:
		pts += 5
	}

	// Signal breadth, up to 15: proportional to the 0-6 score.
	pts += float64(score) / 6.0 * 15.0

	if pts > 100 {
		pts = 100
	}
	return pts
}
