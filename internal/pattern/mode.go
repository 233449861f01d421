package pattern

import (
	"fmt"

	"PatternSentinel/internal/model"
)

// Mode selects the admission policy for validated candidates. It is fixed by
// configuration and never changes at runtime.
type Mode int

const (
	// Prediction alerts while the pattern is still forming: peak2 must be
	// recent and price must already show weakness, but no neckline break is
	// required.
	Prediction Mode = iota
	// Detection alerts only after a close below the neckline confirms the
	// reversal. No recency limit applies.
	Detection
)

// predictionPullbackPct is how far below peak2 the current price must sit for
// a prediction-mode alert (early weakness without a neckline break).
const predictionPullbackPct = 0.02

// ParseMode converts the configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "prediction":
		return Prediction, nil
	case "detection":
		return Detection, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}

func (m Mode) String() string {
	if m == Prediction {
		return "prediction"
	}
	return "detection"
}

// Admit decides whether a validated candidate qualifies for alerting under
// this mode and, if so, with which status. recencyWindow only applies to
// Prediction. A rejected candidate is simply dropped for this scan; peaks are
// recomputed from scratch next run.
func (m Mode) Admit(c *model.PatternCandidate, closes []float64, recencyWindow int) (model.Status, bool) {
	switch m {
	case Prediction:
		barsSincePeak2 := len(closes) - 1 - c.Peak2.Index
		if barsSincePeak2 > recencyWindow {
			return "", false
		}
		current := closes[len(closes)-1]
		if current > c.Peak2.Price*(1-predictionPullbackPct) {
			return "", false // price rallied back toward peak2
		}
		return model.StatusForming, true
	default:
		if !c.ReversalConfirmed {
			return "", false // neckline never broke
		}
		return model.StatusConfirmed, true
	}
}
