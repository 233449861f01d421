package model

import "time"

// Timeframe identifies the bar aggregation level of a price series.
type Timeframe string

const (
	TimeframeIntraday Timeframe = "intraday"
	TimeframeDaily    Timeframe = "daily"
	TimeframeWeekly   Timeframe = "weekly"
	TimeframeMonthly  Timeframe = "monthly"
)

// AllTimeframes lists the supported timeframes in ascending aggregation order.
var AllTimeframes = []Timeframe{TimeframeIntraday, TimeframeDaily, TimeframeWeekly, TimeframeMonthly}

// ValidTimeframe reports whether tf is one of the supported timeframes.
func ValidTimeframe(tf Timeframe) bool {
	for _, t := range AllTimeframes {
		if t == tf {
			return true
		}
	}
	return false
}

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds the fetched bar sequences for one instrument, keyed by timeframe.
type PriceSeries struct {
	Symbol    string
	AssetType string
	Bars      map[Timeframe][]OHLCV
	FetchedAt time.Time
}
