package pattern

import (
	"PatternSentinel/internal/calculator"
	"PatternSentinel/internal/config"
	"PatternSentinel/internal/model"
)

// necklineBreakTolerance allows a small amount of noise when deciding whether a
// close broke below the trough (0.5%, matching the confirmation rule).
const necklineBreakTolerance = 0.995

// Validator applies the structural double-top checks to a peak pair.
type Validator struct {
	cfg config.PatternConfig
}

// NewValidator creates a Validator with the given thresholds.
func NewValidator(cfg config.PatternConfig) *Validator {
	return &Validator{cfg: cfg}
}

// Validate evaluates the (peak1, trough, peak2) triple anchored at the given
// peak indices. The five checks run in order: candle distance, price
// tolerance, trough depth, asymmetric prominence, reversal confirmation. The
// trough is the global close minimum strictly between the peaks. Returns nil
// when any check fails.
func (v *Validator) Validate(bars []model.OHLCV, closes []float64, p1Idx, p2Idx int) *model.PatternCandidate {
	// 1. Candle distance band.
	distance := p2Idx - p1Idx
	if distance < v.cfg.MinCandleDistance || distance > v.cfg.MaxCandleDistance {
		return nil
	}

	peak1Price := closes[p1Idx]
	peak2Price := closes[p2Idx]
	if peak1Price <= 0 {
		return nil
	}

	// 2. Price tolerance. A double top tests the same resistance level twice;
	// peak2 marginally higher is a failed breakout, significantly higher is an
	// uptrend continuation.
	priceDiffPct := abs(peak2Price-peak1Price) / peak1Price * 100
	if priceDiffPct > v.cfg.TolerancePct {
		return nil
	}

	// 3. Trough: global minimum strictly between the peaks, deep enough
	// against the lower peak, and not pinned to either edge of the span.
	troughIdx := p1Idx + 1
	for i := p1Idx + 1; i < p2Idx; i++ {
		if closes[i] < closes[troughIdx] {
			troughIdx = i
		}
	}
	troughPrice := closes[troughIdx]

	lowerPeak := peak1Price
	if peak2Price < lowerPeak {
		lowerPeak = peak2Price
	}
	if troughPrice >= lowerPeak {
		return nil
	}
	// No intermediate close may exceed the lower peak: that would be a third
	// top or a continuation leg, not an M-shape.
	for i := p1Idx + 1; i < p2Idx; i++ {
		if closes[i] > lowerPeak {
			return nil
		}
	}
	troughDepthPct := (lowerPeak - troughPrice) / lowerPeak * 100
	if troughDepthPct < v.cfg.MinTroughDepthPct {
		return nil
	}
	position := float64(troughIdx-p1Idx) / float64(distance)
	if position < 0.1 || position > 0.9 {
		return nil
	}

	// 4. Asymmetric prominence: peak1 needs a genuine rejection on its right,
	// peak2 a genuine rally on its left. Distinguishes an M-shape from a
	// gentle rolling top.
	rightMin := minRange(closes, p1Idx+1, p1Idx+v.cfg.PeakWindow)
	if (peak1Price-rightMin)/peak1Price*100 < v.cfg.MinReversalDropPct {
		return nil
	}
	leftMin := minRange(closes, p2Idx-v.cfg.PeakWindow, p2Idx-1)
	if (peak2Price-leftMin)/peak2Price*100 < v.cfg.MinRallyRisePct {
		return nil
	}

	// 5. Reversal confirmation. After peak2, price either breaks the neckline
	// (confirmed reversal) or must stay depressed: a new high, or a rally back
	// above the retrace ceiling after having fallen below it, reclassifies the
	// structure as consolidation before continuation.
	reversalConfirmed, ok := v.checkReversal(closes, p2Idx, peak2Price, troughPrice)
	if !ok {
		return nil
	}

	window := v.cfg.PeakWindow
	return &model.PatternCandidate{
		Peak1: model.Peak{
			Index:         p1Idx,
			Time:          bars[p1Idx].Time,
			Price:         peak1Price,
			ProminencePct: calculator.PeakProminencePct(closes, p1Idx, window),
		},
		Trough: model.Trough{
			Index:         troughIdx,
			Time:          bars[troughIdx].Time,
			Price:         troughPrice,
			ProminencePct: calculator.TroughProminencePct(closes, troughIdx, window),
		},
		Peak2: model.Peak{
			Index:         p2Idx,
			Time:          bars[p2Idx].Time,
			Price:         peak2Price,
			ProminencePct: calculator.PeakProminencePct(closes, p2Idx, window),
		},
		PriceDiffPct:      priceDiffPct,
		CandleDistance:    distance,
		TroughDepthPct:    troughDepthPct,
		ReversalConfirmed: reversalConfirmed,
	}
}

// checkReversal walks the closes after peak2. It returns (confirmed, valid):
// confirmed when a close broke below the neckline, valid=false when the price
// action after peak2 disqualifies the candidate as a continuation.
func (v *Validator) checkReversal(closes []float64, p2Idx int, peak2Price, neckline float64) (confirmed, valid bool) {
	ceiling := neckline + v.cfg.MaxRetraceFraction*(peak2Price-neckline)
	descended := false
	for i := p2Idx + 1; i < len(closes); i++ {
		c := closes[i]
		if c < neckline*necklineBreakTolerance {
			return true, true
		}
		if c > peak2Price {
			return false, false // new high after peak2
		}
		if c <= ceiling {
			descended = true
			continue
		}
		if descended {
			return false, false // rallied back above the retrace ceiling
		}
	}
	return false, true
}

func minRange(prices []float64, lo, hi int) float64 {
	if lo < 0 {
		lo = 0
	}
	if hi > len(prices)-1 {
		hi = len(prices) - 1
	}
	if lo > hi {
		// Empty side window (peak at the series edge): no movement observed.
		if lo > len(prices)-1 {
			lo = len(prices) - 1
		}
		return prices[lo]
	}
	m := prices[lo]
	for j := lo + 1; j <= hi; j++ {
		if prices[j] < m {
			m = prices[j]
		}
	}
	return m
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
