package pattern

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PatternSentinel/internal/config"
	"PatternSentinel/internal/model"
)

func testPatternConfig() config.PatternConfig {
	return config.PatternConfig{
		TolerancePct:       3.0,
		MinCandleDistance:  8,
		MaxCandleDistance:  67,
		MinTroughDepthPct:  3.0,
		MinReversalDropPct: 1.5,
		MinRallyRisePct:    1.5,
		MaxRetraceFraction: 0.5,
		PeakWindow:         3,
		LookbackBars:       100,
		Mode:               "detection",
		RecencyWindowBars:  50,
	}
}

func barsFromCloses(closes []float64) []model.OHLCV {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:   base.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.005,
			Low:    c * 0.995,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

// doubleTopCloses builds an M-shape: peak 100 at index 0, trough 94 at index
// 10, peak 100.5 at index 20, then a decline that breaks the neckline at the
// final bar.
func doubleTopCloses() []float64 {
	return []float64{
		100, 98, 97, 96.5, 96, 95.5, 95, 94.8, 94.5, 94.2, // 0-9
		94, 94.5, 95, 96, 97, 98, 98.3, 98.5, 99.2, 99.8, // 10-19
		100.5, 99, 97, 95, 93, // 20-24
	}
}

func TestValidate_AcceptsCleanDoubleTop(t *testing.T) {
	closes := doubleTopCloses()
	v := NewValidator(testPatternConfig())

	c := v.Validate(barsFromCloses(closes), closes, 0, 20)
	require.NotNil(t, c)

	assert.Equal(t, 0, c.Peak1.Index)
	assert.Equal(t, 10, c.Trough.Index)
	assert.Equal(t, 20, c.Peak2.Index)
	assert.Equal(t, 20, c.CandleDistance)
	assert.InDelta(t, 0.5, c.PriceDiffPct, 0.01)
	assert.InDelta(t, 6.0, c.TroughDepthPct, 0.01)
	assert.True(t, c.ReversalConfirmed, "final close 93 is below neckline 94 with tolerance")
}

func TestValidate_RejectsPeaksTooClose(t *testing.T) {
	closes := doubleTopCloses()
	v := NewValidator(testPatternConfig())

	assert.Nil(t, v.Validate(barsFromCloses(closes), closes, 0, 5))
}

func TestValidate_RejectsPeaksTooFar(t *testing.T) {
	cfg := testPatternConfig()
	cfg.MaxCandleDistance = 15
	v := NewValidator(cfg)
	closes := doubleTopCloses()

	assert.Nil(t, v.Validate(barsFromCloses(closes), closes, 0, 20))
}

func TestValidate_RejectsUptrendContinuation(t *testing.T) {
	// Second peak 8% above the first is a breakout, not a retest.
	closes := doubleTopCloses()
	closes[20] = 108
	v := NewValidator(testPatternConfig())

	assert.Nil(t, v.Validate(barsFromCloses(closes), closes, 0, 20))
}

func TestValidate_RejectsShallowTrough(t *testing.T) {
	cfg := testPatternConfig()
	cfg.MinTroughDepthPct = 10
	v := NewValidator(cfg)
	closes := doubleTopCloses()

	assert.Nil(t, v.Validate(barsFromCloses(closes), closes, 0, 20))
}

func TestValidate_RejectsIntermediateHighAboveLowerPeak(t *testing.T) {
	// A close between the peaks exceeding the lower peak means a third top.
	closes := doubleTopCloses()
	closes[15] = 101
	v := NewValidator(testPatternConfig())

	assert.Nil(t, v.Validate(barsFromCloses(closes), closes, 0, 20))
}

func TestValidate_RejectsEdgePinnedTrough(t *testing.T) {
	// Force the minimum right next to peak2: position 19/20 = 0.95 > 0.9.
	closes := doubleTopCloses()
	for i := 1; i < 19; i++ {
		closes[i] = 99
	}
	closes[19] = 93.5
	v := NewValidator(testPatternConfig())

	assert.Nil(t, v.Validate(barsFromCloses(closes), closes, 0, 20))
}

func TestValidate_RejectsWeakProminence(t *testing.T) {
	cfg := testPatternConfig()
	cfg.MinRallyRisePct = 5.0 // rally into peak2 is only ~2%
	v := NewValidator(cfg)
	closes := doubleTopCloses()

	assert.Nil(t, v.Validate(barsFromCloses(closes), closes, 0, 20))
}

func TestValidate_RejectsNewHighAfterPeak2(t *testing.T) {
	closes := doubleTopCloses()
	closes[23] = 101 // price takes out peak2 before any neckline break
	v := NewValidator(testPatternConfig())

	assert.Nil(t, v.Validate(barsFromCloses(closes), closes, 0, 20))
}

func TestValidate_RejectsRallyAfterDescent(t *testing.T) {
	// Price descends below the retrace ceiling (97.25) then rallies back above
	// it without ever breaking the neckline. Consolidation, not reversal.
	closes := doubleTopCloses()
	closes[22] = 96
	closes[23] = 99
	closes[24] = 99.5
	v := NewValidator(testPatternConfig())

	assert.Nil(t, v.Validate(barsFromCloses(closes), closes, 0, 20))
}

func TestValidate_FormingPatternNotConfirmed(t *testing.T) {
	// Price hovers between the ceiling and the neckline: still a valid
	// candidate, just unconfirmed.
	closes := doubleTopCloses()
	closes[22] = 98
	closes[23] = 97.5
	closes[24] = 98.2
	v := NewValidator(testPatternConfig())

	c := v.Validate(barsFromCloses(closes), closes, 0, 20)
	require.NotNil(t, c)
	assert.False(t, c.ReversalConfirmed)
}
