package collector

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"

	"PatternSentinel/internal/model"
)

// BinanceFetcher implements Fetcher against the Binance spot API via the
// go-binance client. It serves as the backup provider for crypto symbols.
type BinanceFetcher struct {
	client *binance.Client
}

// NewBinanceFetcher creates a Binance fetcher. Empty keys are fine for the
// public kline endpoints used here.
func NewBinanceFetcher(apiKey, secretKey string) *BinanceFetcher {
	return &BinanceFetcher{client: binance.NewClient(apiKey, secretKey)}
}

func (f *BinanceFetcher) Name() string { return "binance" }

func binanceInterval(tf model.Timeframe) string {
	switch tf {
	case model.TimeframeIntraday:
		return "4h"
	case model.TimeframeWeekly:
		return "1w"
	case model.TimeframeMonthly:
		return "1M"
	default:
		return "1d"
	}
}

// FetchBars retrieves up to lookback klines for the given timeframe, oldest first.
func (f *BinanceFetcher) FetchBars(ctx context.Context, symbol string, tf model.Timeframe, lookback int) ([]model.OHLCV, error) {
	klines, err := f.client.NewKlinesService().
		Symbol(symbol).
		Interval(binanceInterval(tf)).
		Limit(lookback).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance klines %s %s: %w", symbol, tf, err)
	}
	if len(klines) == 0 {
		return nil, fmt.Errorf("binance %s %s: %w", symbol, tf, ErrNoData)
	}

	bars := make([]model.OHLCV, 0, len(klines))
	for _, k := range klines {
		bar, err := translateKline(k)
		if err != nil {
			return nil, fmt.Errorf("binance kline %s %s: %w", symbol, tf, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// translateKline converts a go-binance kline, whose prices arrive as strings,
// into an OHLCV bar.
func translateKline(k *binance.Kline) (model.OHLCV, error) {
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return model.OHLCV{}, fmt.Errorf("parse open %q: %w", k.Open, err)
	}
	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return model.OHLCV{}, fmt.Errorf("parse high %q: %w", k.High, err)
	}
	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return model.OHLCV{}, fmt.Errorf("parse low %q: %w", k.Low, err)
	}
	closePrice, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return model.OHLCV{}, fmt.Errorf("parse close %q: %w", k.Close, err)
	}
	volume, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return model.OHLCV{}, fmt.Errorf("parse volume %q: %w", k.Volume, err)
	}
	return model.OHLCV{
		Time:   time.UnixMilli(k.OpenTime),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}, nil
}
