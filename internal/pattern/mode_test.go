package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PatternSentinel/internal/model"
)

func TestParseMode(t *testing.T) {
	m, err := ParseMode("prediction")
	require.NoError(t, err)
	assert.Equal(t, Prediction, m)
	assert.Equal(t, "prediction", m.String())

	m, err = ParseMode("detection")
	require.NoError(t, err)
	assert.Equal(t, Detection, m)
	assert.Equal(t, "detection", m.String())

	_, err = ParseMode("aggressive")
	assert.Error(t, err)
}

func candidateAt(p2Idx int, peak2Price float64, confirmed bool) *model.PatternCandidate {
	return &model.PatternCandidate{
		Peak1:             model.Peak{Index: p2Idx - 20, Price: peak2Price},
		Trough:            model.Trough{Index: p2Idx - 10, Price: peak2Price * 0.94},
		Peak2:             model.Peak{Index: p2Idx, Price: peak2Price},
		CandleDistance:    20,
		ReversalConfirmed: confirmed,
	}
}

func TestDetection_RequiresNecklineBreak(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}

	_, admitted := Detection.Admit(candidateAt(25, 100, false), closes, 50)
	assert.False(t, admitted, "unbroken neckline must not be admitted in detection mode")

	status, admitted := Detection.Admit(candidateAt(25, 100, true), closes, 50)
	require.True(t, admitted)
	assert.Equal(t, model.StatusConfirmed, status)
}

func TestDetection_IgnoresRecency(t *testing.T) {
	closes := make([]float64, 200)
	for i := range closes {
		closes[i] = 100
	}
	// Peak2 is 180 bars old; detection mode does not care.
	status, admitted := Detection.Admit(candidateAt(19, 100, true), closes, 50)
	require.True(t, admitted)
	assert.Equal(t, model.StatusConfirmed, status)
}

func TestPrediction_AdmitsFormingPattern(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	closes[29] = 97 // 3% below peak2, past the pullback threshold

	status, admitted := Prediction.Admit(candidateAt(25, 100, false), closes, 50)
	require.True(t, admitted)
	assert.Equal(t, model.StatusForming, status)
}

func TestPrediction_RejectsStalePeak2(t *testing.T) {
	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 97
	}
	_, admitted := Prediction.Admit(candidateAt(10, 100, false), closes, 50)
	assert.False(t, admitted, "peak2 89 bars old exceeds the 50-bar recency window")
}

func TestPrediction_RejectsPriceNearPeak(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	closes[29] = 99.5 // only 0.5% off the peak, no weakness yet

	_, admitted := Prediction.Admit(candidateAt(25, 100, false), closes, 50)
	assert.False(t, admitted)
}
