package pattern

import (
	"PatternSentinel/internal/calculator"
	"PatternSentinel/internal/model"
)

// DivergenceAnalyzer compares RSI at the two peaks of a candidate.
type DivergenceAnalyzer struct {
	minDiff float64
}

// NewDivergenceAnalyzer creates an analyzer with the configured minimum
// peak1-to-peak2 RSI drop for bearish divergence.
func NewDivergenceAnalyzer(minDiff float64) *DivergenceAnalyzer {
	return &DivergenceAnalyzer{minDiff: minDiff}
}

// Analyze looks up the RSI at each peak index in the primary timeframe's
// series. ok is false when either peak falls inside the RSI warm-up period,
// in which case the result is zero-valued and no divergence is claimed.
func (a *DivergenceAnalyzer) Analyze(c *model.PatternCandidate, rsi calculator.RSISeries) (model.DivergenceResult, bool) {
	r1, ok1 := rsi.At(c.Peak1.Index)
	r2, ok2 := rsi.At(c.Peak2.Index)
	if !ok1 || !ok2 {
		return model.DivergenceResult{}, false
	}
	diff := r1 - r2
	return model.DivergenceResult{
		Peak1RSI:            r1,
		Peak2RSI:            r2,
		Diff:                diff,
		IsBearishDivergence: diff >= a.minDiff,
	}, true
}
