package collector

import (
	"context"
	"errors"

	"PatternSentinel/internal/model"
)

// ErrNoData is returned when a provider responds but has no bars for the
// requested symbol/timeframe.
var ErrNoData = errors.New("no data returned")

// Fetcher defines the interface for fetching market data. The core depends
// only on this interface, never on a concrete provider.
type Fetcher interface {
	FetchBars(ctx context.Context, symbol string, tf model.Timeframe, lookback int) ([]model.OHLCV, error)
	Name() string
}
