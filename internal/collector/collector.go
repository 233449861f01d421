package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"PatternSentinel/internal/model"
)

// Collector fetches all requested timeframes for one instrument and bundles
// them into a PriceSeries for the pattern pipeline.
type Collector struct {
	Fetcher         Fetcher
	PrimaryTF       model.Timeframe
	Timeframes      []model.Timeframe
	PrimaryLookback int
	RSIPeriod       int
}

// NewCollector creates a Collector. timeframes should include the primary.
func NewCollector(fetcher Fetcher, primaryTF model.Timeframe, timeframes []model.Timeframe, primaryLookback, rsiPeriod int) *Collector {
	return &Collector{
		Fetcher:         fetcher,
		PrimaryTF:       primaryTF,
		Timeframes:      timeframes,
		PrimaryLookback: primaryLookback,
		RSIPeriod:       rsiPeriod,
	}
}

// lookbackFor returns how many bars to request per timeframe. The primary
// timeframe needs the full pattern window; the others only feed RSI, which
// needs period+1 bars plus smoothing headroom.
func (c *Collector) lookbackFor(tf model.Timeframe) int {
	if tf == c.PrimaryTF {
		return c.PrimaryLookback
	}
	return c.RSIPeriod * 3
}

// Collect fetches every configured timeframe for the symbol. A failed primary
// fetch fails the whole collection; secondary timeframes degrade gracefully
// and are simply missing from the bundle.
func (c *Collector) Collect(ctx context.Context, symbol, assetType string) (*model.PriceSeries, error) {
	series := &model.PriceSeries{
		Symbol:    symbol,
		AssetType: assetType,
		Bars:      make(map[model.Timeframe][]model.OHLCV, len(c.Timeframes)),
		FetchedAt: time.Now(),
	}

	for _, tf := range c.Timeframes {
		bars, err := c.Fetcher.FetchBars(ctx, symbol, tf, c.lookbackFor(tf))
		if err != nil {
			if tf == c.PrimaryTF {
				return nil, fmt.Errorf("fetch %s %s: %w", symbol, tf, err)
			}
			log.Printf("[WARN] fetch %s %s failed, skipping timeframe: %v", symbol, tf, err)
			continue
		}
		series.Bars[tf] = bars
	}
	return series, nil
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Bars map[model.Timeframe][]model.OHLCV
	Err  error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, _ string, tf model.Timeframe, _ int) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	bars, ok := m.Bars[tf]
	if !ok || len(bars) == 0 {
		return nil, ErrNoData
	}
	return bars, nil
}
