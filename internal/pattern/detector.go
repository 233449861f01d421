package pattern

import (
	"fmt"

	"PatternSentinel/internal/calculator"
	"PatternSentinel/internal/config"
	"PatternSentinel/internal/model"
)

// Detector runs the full per-instrument pipeline: extremum detection on the
// primary timeframe, structural validation, divergence analysis, mode
// admission and scoring. It is pure: identical bars and configuration always
// produce the identical ScoredPattern.
type Detector struct {
	cfg       *config.Config
	primaryTF model.Timeframe
	mode      Mode
	validator *Validator
	analyzer  *DivergenceAnalyzer
	scorer    *Scorer
}

// NewDetector creates a Detector, failing on an unknown mode string. All
// other threshold validation happens in config.Validate.
func NewDetector(cfg *config.Config) (*Detector, error) {
	mode, err := ParseMode(cfg.Pattern.Mode)
	if err != nil {
		return nil, fmt.Errorf("pattern mode: %w", err)
	}
	return &Detector{
		cfg:       cfg,
		primaryTF: model.Timeframe(cfg.Data.PrimaryTimeframe),
		mode:      mode,
		validator: NewValidator(cfg.Pattern),
		analyzer:  NewDivergenceAnalyzer(cfg.RSI.DivergenceMinDiff),
		scorer:    NewScorer(cfg.RSI, cfg.Scoring),
	}, nil
}

// Detect scans one instrument's price series for a double top. A nil result
// with nil error means no structurally valid pattern exists in the window,
// which is the normal outcome for most instruments. ErrInsufficientData is
// returned when the primary series is shorter than the lookback window.
func (d *Detector) Detect(series *model.PriceSeries) (*model.ScoredPattern, error) {
	primary, ok := series.Bars[d.primaryTF]
	if !ok || len(primary) < d.cfg.Pattern.LookbackBars {
		return nil, fmt.Errorf("%s: primary timeframe %s has %d bars, lookback needs %d: %w",
			series.Symbol, d.primaryTF, len(primary), d.cfg.Pattern.LookbackBars, calculator.ErrInsufficientData)
	}

	// Work on the trailing lookback window only; older structure is stale.
	window := primary[len(primary)-d.cfg.Pattern.LookbackBars:]
	closes := calculator.Closes(window)
	volumes := calculator.Volumes(window)

	rsiPrimary, err := calculator.ComputeRSI(closes, d.cfg.RSI.Period)
	if err != nil {
		return nil, fmt.Errorf("%s: primary rsi: %w", series.Symbol, err)
	}

	peaks := calculator.FindPeaks(closes, d.cfg.Pattern.PeakWindow)
	if len(peaks) < 2 {
		return nil, nil
	}

	candidate, status := d.search(window, closes, peaks)
	if candidate == nil {
		return nil, nil
	}

	div, divOK := d.analyzer.Analyze(candidate, rsiPrimary)

	rsiByTF := d.latestRSIPerTimeframe(series)
	flags := d.scorer.OverboughtFlags(rsiByTF)

	volumeDeclinePct := 0.0
	if v1 := volumes[candidate.Peak1.Index]; v1 > 0 {
		volumeDeclinePct = (v1 - volumes[candidate.Peak2.Index]) / v1 * 100
	}

	score := d.scorer.Score(candidate, div, flags, volumeDeclinePct)
	confidence := d.scorer.Confidence(candidate, score, volumes)

	// Divergence policy: with divergence_required, a candidate that cannot
	// show qualifying divergence is finalized as REJECTED. It is still
	// computed and returned (deterministic output) but callers must not
	// surface it. Without the flag, missing divergence only costs its point.
	if d.cfg.RSI.DivergenceRequired && (!divOK || !div.IsBearishDivergence) {
		status = model.StatusRejected
	}

	height := (candidate.Peak1.Price+candidate.Peak2.Price)/2 - candidate.Trough.Price
	neckline := candidate.Trough.Price

	return &model.ScoredPattern{
		Symbol:              series.Symbol,
		AssetType:           series.AssetType,
		Candidate:           *candidate,
		Divergence:          div,
		RSIByTimeframe:      rsiByTF,
		TimeframeOverbought: flags,
		VolumeDeclinePct:    volumeDeclinePct,
		Mode:                d.mode.String(),
		Status:              status,
		Score:               score,
		ConfidencePct:       confidence,
		CurrentPrice:        closes[len(closes)-1],
		Neckline:            neckline,
		PriceTarget:         neckline - height,
		GeneratedAt:         window[len(window)-1].Time,
	}, nil
}

// search walks peak2 candidates most recent first and, for each, every
// antecedent peak as peak1. The first triple that passes validation and mode
// admission wins.
func (d *Detector) search(bars []model.OHLCV, closes []float64, peaks []int) (*model.PatternCandidate, model.Status) {
	for i := len(peaks) - 1; i >= 1; i-- {
		p2 := peaks[i]
		for j := i - 1; j >= 0; j-- {
			candidate := d.validator.Validate(bars, closes, peaks[j], p2)
			if candidate == nil {
				continue
			}
			status, admitted := d.mode.Admit(candidate, closes, d.cfg.Pattern.RecencyWindowBars)
			if !admitted {
				continue
			}
			return candidate, status
		}
	}
	return nil, ""
}

// latestRSIPerTimeframe computes the most recent RSI for every fetched
// timeframe. Timeframes with too little data are simply absent from the map.
func (d *Detector) latestRSIPerTimeframe(series *model.PriceSeries) map[model.Timeframe]float64 {
	out := make(map[model.Timeframe]float64, len(series.Bars))
	for tf, bars := range series.Bars {
		rsi, err := calculator.ComputeRSI(calculator.Closes(bars), d.cfg.RSI.Period)
		if err != nil {
			continue
		}
		if v, ok := rsi.Latest(); ok {
			out[tf] = v
		}
	}
	return out
}
