package calculator

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is returned when a series is too short for the requested
// computation. Callers skip the instrument; it is not fatal to a batch scan.
var ErrInsufficientData = errors.New("insufficient data")

// RSISeries holds Wilder-smoothed RSI values for a close-price sequence.
// Values[k] is the RSI of bar index Period+k, so the series is exactly
// len(closes)-Period long.
type RSISeries struct {
	Period int
	Values []float64
}

// At returns the RSI at the given bar index of the source sequence.
// Bars inside the warm-up period have no value.
func (s RSISeries) At(barIndex int) (float64, bool) {
	i := barIndex - s.Period
	if i < 0 || i >= len(s.Values) {
		return 0, false
	}
	return s.Values[i], true
}

// Latest returns the RSI of the most recent bar.
func (s RSISeries) Latest() (float64, bool) {
	if len(s.Values) == 0 {
		return 0, false
	}
	return s.Values[len(s.Values)-1], true
}

// ComputeRSI computes the Wilder-smoothed RSI series over the given period.
// The first period changes seed the averages from simple means; every later bar
// updates them as avg = (avg*(period-1)+new)/period. RSI is 100 when the
// smoothed loss is exactly zero and 50 when the series has no movement at all.
// Requires at least period+1 closes.
func ComputeRSI(closes []float64, period int) (RSISeries, error) {
	if period <= 0 {
		return RSISeries{}, fmt.Errorf("rsi period must be positive, got %d", period)
	}
	if len(closes) < period+1 {
		return RSISeries{}, fmt.Errorf("rsi(%d) needs %d closes, have %d: %w",
			period, period+1, len(closes), ErrInsufficientData)
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	values := make([]float64, 0, len(closes)-period)
	values = append(values, rsiValue(avgGain, avgLoss))

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		values = append(values, rsiValue(avgGain, avgLoss))
	}

	return RSISeries{Period: period, Values: values}, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50.0 // flat series, neutral by convention
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
