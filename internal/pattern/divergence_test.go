package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PatternSentinel/internal/calculator"
	"PatternSentinel/internal/model"
)

// rsiSeriesWith builds a series where the bars at the two given indices carry
// the given RSI values.
func rsiSeriesWith(period, idx1 int, v1 float64, idx2 int, v2 float64) calculator.RSISeries {
	values := make([]float64, idx2-period+1)
	for i := range values {
		values[i] = 50
	}
	values[idx1-period] = v1
	values[idx2-period] = v2
	return calculator.RSISeries{Period: period, Values: values}
}

func TestAnalyze_BearishDivergence(t *testing.T) {
	a := NewDivergenceAnalyzer(0.5)
	c := &model.PatternCandidate{
		Peak1: model.Peak{Index: 20},
		Peak2: model.Peak{Index: 40},
	}
	rsi := rsiSeriesWith(14, 20, 75, 40, 55)

	div, ok := a.Analyze(c, rsi)
	require.True(t, ok)
	assert.Equal(t, 75.0, div.Peak1RSI)
	assert.Equal(t, 55.0, div.Peak2RSI)
	assert.Equal(t, 20.0, div.Diff)
	assert.True(t, div.IsBearishDivergence)
}

func TestAnalyze_NoDivergenceBelowMinDiff(t *testing.T) {
	a := NewDivergenceAnalyzer(0.5)
	c := &model.PatternCandidate{
		Peak1: model.Peak{Index: 20},
		Peak2: model.Peak{Index: 40},
	}
	rsi := rsiSeriesWith(14, 20, 70, 40, 69.8)

	div, ok := a.Analyze(c, rsi)
	require.True(t, ok)
	assert.False(t, div.IsBearishDivergence, "0.2 point drop is inside the noise floor")
}

func TestAnalyze_RisingRSINotBearish(t *testing.T) {
	a := NewDivergenceAnalyzer(0.5)
	c := &model.PatternCandidate{
		Peak1: model.Peak{Index: 20},
		Peak2: model.Peak{Index: 40},
	}
	rsi := rsiSeriesWith(14, 20, 55, 40, 75)

	div, ok := a.Analyze(c, rsi)
	require.True(t, ok)
	assert.Equal(t, -20.0, div.Diff)
	assert.False(t, div.IsBearishDivergence)
}

func TestAnalyze_PeakInWarmup(t *testing.T) {
	a := NewDivergenceAnalyzer(0.5)
	c := &model.PatternCandidate{
		Peak1: model.Peak{Index: 5}, // inside the 14-bar warm-up
		Peak2: model.Peak{Index: 40},
	}
	rsi := rsiSeriesWith(14, 20, 75, 40, 55)

	div, ok := a.Analyze(c, rsi)
	assert.False(t, ok)
	assert.Zero(t, div)
}
