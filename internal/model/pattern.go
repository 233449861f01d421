package model

import "time"

// Peak is a local price maximum within a bar sequence.
// ProminencePct is the larger of the percentage drop from the peak to its
// nearest trailing and leading local minima.
type Peak struct {
	Index         int
	Time          time.Time
	Price         float64
	ProminencePct float64
}

// Trough is a local price minimum within a bar sequence.
// ProminencePct mirrors Peak: the larger percentage rise to the neighboring maxima.
type Trough struct {
	Index         int
	Time          time.Time
	Price         float64
	ProminencePct float64
}

// PatternCandidate is a peak-trough-peak triple that passed all structural checks.
// The trough lies strictly between the peaks and is the global minimum of that span.
type PatternCandidate struct {
	Peak1             Peak
	Trough            Trough
	Peak2             Peak
	PriceDiffPct      float64 // |peak2-peak1| / peak1 * 100
	CandleDistance    int     // peak2.Index - peak1.Index
	TroughDepthPct    float64 // depth measured against the lower of the two peaks
	ReversalConfirmed bool    // a close after peak2 broke below the trough
}

// DivergenceResult compares momentum at the two peaks of a candidate.
type DivergenceResult struct {
	Peak1RSI            float64
	Peak2RSI            float64
	Diff                float64 // Peak1RSI - Peak2RSI
	IsBearishDivergence bool
}

// Status describes how far along a detected pattern is.
type Status string

const (
	StatusForming   Status = "FORMING"
	StatusConfirmed Status = "CONFIRMED"
	StatusRejected  Status = "REJECTED"
)

// ScoredPattern is the final per-instrument result of one scan.
// It is immutable after creation; the notifier consumes and discards it.
type ScoredPattern struct {
	Symbol    string
	AssetType string

	Candidate  PatternCandidate
	Divergence DivergenceResult

	// Latest RSI per timeframe and whether it exceeds the overbought threshold.
	RSIByTimeframe      map[Timeframe]float64
	TimeframeOverbought map[Timeframe]bool

	VolumeDeclinePct float64 // decline from peak1 volume to peak2 volume, percent

	Mode          string
	Status        Status
	Score         int // 0..6
	ConfidencePct float64

	CurrentPrice float64
	Neckline     float64 // trough price; a close below it confirms the pattern
	PriceTarget  float64 // neckline minus pattern height

	// Timestamp of the last bar of the primary series, not wall-clock time,
	// so identical input yields identical output.
	GeneratedAt time.Time
}
