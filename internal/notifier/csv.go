package notifier

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"PatternSentinel/internal/model"
)

// csvHeader is a stable column contract; downstream spreadsheets depend on
// order and names, so append-only changes please.
var csvHeader = []string{
	"symbol", "asset_type", "status", "mode", "score", "confidence_pct",
	"peak1_time", "peak1_price", "peak2_time", "peak2_price",
	"candle_distance", "price_diff_pct", "trough_depth_pct",
	"neckline", "current_price", "price_target",
	"rsi_peak1", "rsi_peak2", "rsi_divergence",
	"volume_decline_pct", "generated_at",
}

// ExportCSV writes the scan results to <dir>/scan_<date>.csv, overwriting any
// earlier export for the same day. Returns the path written.
func ExportCSV(dir string, patterns []*model.ScoredPattern, date string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create csv dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("scan_%s.csv", date))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range patterns {
		if err := w.Write(csvRow(p)); err != nil {
			return "", fmt.Errorf("write csv row %s: %w", p.Symbol, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return path, nil
}

func csvRow(p *model.ScoredPattern) []string {
	c := p.Candidate
	return []string{
		p.Symbol,
		p.AssetType,
		string(p.Status),
		p.Mode,
		strconv.Itoa(p.Score),
		fmtF(p.ConfidencePct),
		c.Peak1.Time.Format("2006-01-02"),
		fmtF(c.Peak1.Price),
		c.Peak2.Time.Format("2006-01-02"),
		fmtF(c.Peak2.Price),
		strconv.Itoa(c.CandleDistance),
		fmtF(c.PriceDiffPct),
		fmtF(c.TroughDepthPct),
		fmtF(p.Neckline),
		fmtF(p.CurrentPrice),
		fmtF(p.PriceTarget),
		fmtF(p.Divergence.Peak1RSI),
		fmtF(p.Divergence.Peak2RSI),
		strconv.FormatBool(p.Divergence.IsBearishDivergence),
		fmtF(p.VolumeDeclinePct),
		p.GeneratedAt.Format("2006-01-02 15:04"),
	}
}

func fmtF(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
