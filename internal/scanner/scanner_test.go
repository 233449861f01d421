package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PatternSentinel/internal/collector"
	"PatternSentinel/internal/config"
	"PatternSentinel/internal/model"
	"PatternSentinel/internal/pattern"
)

// symbolFetcher serves canned bars per symbol so one scan can mix healthy and
// failing instruments.
type symbolFetcher struct {
	bars map[string][]model.OHLCV
}

func (f *symbolFetcher) Name() string { return "test" }

func (f *symbolFetcher) FetchBars(_ context.Context, symbol string, tf model.Timeframe, _ int) ([]model.OHLCV, error) {
	if tf != model.TimeframeDaily {
		return nil, collector.ErrNoData
	}
	bars, ok := f.bars[symbol]
	if !ok {
		return nil, errors.New("provider outage")
	}
	return bars, nil
}

func testScanConfig() *config.Config {
	cfg := &config.Config{
		Pattern: config.PatternConfig{
			TolerancePct:       3.0,
			MinCandleDistance:  8,
			MaxCandleDistance:  67,
			MinTroughDepthPct:  3.0,
			MinReversalDropPct: 1.5,
			MinRallyRisePct:    1.5,
			MaxRetraceFraction: 0.5,
			PeakWindow:         3,
			LookbackBars:       60,
			Mode:               "detection",
			RecencyWindowBars:  50,
		},
		RSI:     config.RSIConfig{Period: 14, DivergenceMinDiff: 0.5, OverboughtThreshold: 70},
		Scoring: config.ScoringConfig{MinScoreToReport: 1, VolumeDeclineThresholdPct: 20, MinConfidencePct: 1},
	}
	cfg.Data.Provider = "yahoo"
	cfg.Data.PrimaryTimeframe = "daily"
	cfg.Scan.Concurrency = 3
	return cfg
}

func barsFromCloses(closes []float64) []model.OHLCV {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: base.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return bars
}

// doubleTopCloses mirrors the detector's confirmed-pattern fixture: peaks at
// indices 15 and 35, trough 94 at 25, neckline break at 44.
func doubleTopCloses() []float64 {
	closes := []float64{
		85, 86, 87, 88, 89, 90, 91, 92, 93, 94, 95, 96, 97, 98, 99, 100,
		99, 98, 97, 96, 95.2, 94.8, 94.5, 94.2, 94.1, 94,
		94.5, 95.5, 96.5, 97.5, 98, 98.6, 98.2, 99.0, 99.6, 100.4,
		99.5, 98.5, 97.5, 96.5, 95.5, 95, 94.6, 94.2, 93.4, 93.5,
	}
	for c := 93.3; len(closes) < 60; c -= 0.1 {
		closes = append(closes, c)
	}
	return closes
}

func uptrendCloses() []float64 {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	return closes
}

func newTestScanner(t *testing.T, cfg *config.Config, fetcher collector.Fetcher, universe []Asset) *Scanner {
	t.Helper()
	coll := collector.NewCollector(fetcher, model.TimeframeDaily,
		[]model.Timeframe{model.TimeframeDaily}, cfg.Pattern.LookbackBars, cfg.RSI.Period)
	det, err := pattern.NewDetector(cfg)
	require.NoError(t, err)
	return New(cfg, coll, det, universe)
}

func TestScanAll_IsolatesFailures(t *testing.T) {
	cfg := testScanConfig()
	fetcher := &symbolFetcher{bars: map[string][]model.OHLCV{
		"AAA": barsFromCloses(doubleTopCloses()),
		"CCC": barsFromCloses(uptrendCloses()),
		// "BBB" missing: fetch fails
	}}
	sc := newTestScanner(t, cfg, fetcher, []Asset{
		{Symbol: "AAA", AssetType: "stock"},
		{Symbol: "BBB", AssetType: "stock"},
		{Symbol: "CCC", AssetType: "stock"},
	})

	patterns, stats := sc.ScanAll(context.Background())

	assert.Equal(t, 3, stats.Scanned)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, stats.Found)
	assert.Equal(t, 1, stats.Surfaced)
	require.Len(t, patterns, 1)
	assert.Equal(t, "AAA", patterns[0].Symbol)
	assert.Equal(t, model.StatusConfirmed, patterns[0].Status)
}

func TestScanAll_SortsByScoreThenSymbol(t *testing.T) {
	cfg := testScanConfig()
	closes := doubleTopCloses()
	fetcher := &symbolFetcher{bars: map[string][]model.OHLCV{
		"ZZZ": barsFromCloses(closes),
		"AAA": barsFromCloses(closes),
		"MMM": barsFromCloses(closes),
	}}
	sc := newTestScanner(t, cfg, fetcher, []Asset{
		{Symbol: "ZZZ"}, {Symbol: "AAA"}, {Symbol: "MMM"},
	})

	patterns, stats := sc.ScanAll(context.Background())
	require.Equal(t, 3, stats.Surfaced)

	// Identical data means identical scores, so symbols break the tie.
	assert.Equal(t, "AAA", patterns[0].Symbol)
	assert.Equal(t, "MMM", patterns[1].Symbol)
	assert.Equal(t, "ZZZ", patterns[2].Symbol)
}

func TestScanAll_FiltersByScoreFloor(t *testing.T) {
	cfg := testScanConfig()
	cfg.Scoring.MinScoreToReport = 6 // the fixture cannot reach a full house
	fetcher := &symbolFetcher{bars: map[string][]model.OHLCV{
		"AAA": barsFromCloses(doubleTopCloses()),
	}}
	sc := newTestScanner(t, cfg, fetcher, []Asset{{Symbol: "AAA"}})

	patterns, stats := sc.ScanAll(context.Background())
	assert.Equal(t, 1, stats.Found)
	assert.Equal(t, 0, stats.Surfaced)
	assert.Empty(t, patterns)
}

func TestScanAll_RejectedNeverSurfaces(t *testing.T) {
	cfg := testScanConfig()
	cfg.RSI.DivergenceRequired = true
	cfg.RSI.DivergenceMinDiff = 99
	fetcher := &symbolFetcher{bars: map[string][]model.OHLCV{
		"AAA": barsFromCloses(doubleTopCloses()),
	}}
	sc := newTestScanner(t, cfg, fetcher, []Asset{{Symbol: "AAA"}})

	patterns, stats := sc.ScanAll(context.Background())
	assert.Equal(t, 1, stats.Found)
	assert.Equal(t, 0, stats.Surfaced)
	assert.Empty(t, patterns)
}

func TestScanAll_Deterministic(t *testing.T) {
	cfg := testScanConfig()
	fetcher := &symbolFetcher{bars: map[string][]model.OHLCV{
		"AAA": barsFromCloses(doubleTopCloses()),
		"CCC": barsFromCloses(uptrendCloses()),
	}}
	universe := []Asset{{Symbol: "AAA"}, {Symbol: "CCC"}}
	sc := newTestScanner(t, cfg, fetcher, universe)

	first, _ := sc.ScanAll(context.Background())
	second, _ := sc.ScanAll(context.Background())
	assert.Equal(t, first, second)
}
