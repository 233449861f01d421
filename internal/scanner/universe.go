package scanner

import (
	"encoding/json"
	"fmt"
	"os"

	"PatternSentinel/internal/config"
)

// Asset is one instrument in the scan universe.
type Asset struct {
	Symbol    string `json:"symbol"`
	AssetType string `json:"asset_type"`
}

// LoadUniverse builds the scan universe. A universe file takes precedence over
// the inline symbol list; MaxAssets caps either source.
func LoadUniverse(cfg *config.Config) ([]Asset, error) {
	var assets []Asset

	if cfg.Universe.File != "" {
		data, err := os.ReadFile(cfg.Universe.File)
		if err != nil {
			return nil, fmt.Errorf("read universe file: %w", err)
		}
		if err := json.Unmarshal(data, &assets); err != nil {
			return nil, fmt.Errorf("parse universe file: %w", err)
		}
	} else {
		assets = make([]Asset, 0, len(cfg.Universe.Symbols))
		for _, s := range cfg.Universe.Symbols {
			assets = append(assets, Asset{Symbol: s, AssetType: "stock"})
		}
	}

	// Drop blanks and duplicates, first occurrence wins.
	seen := make(map[string]bool, len(assets))
	out := assets[:0]
	for _, a := range assets {
		if a.Symbol == "" || seen[a.Symbol] {
			continue
		}
		seen[a.Symbol] = true
		if a.AssetType == "" {
			a.AssetType = "stock"
		}
		out = append(out, a)
	}

	if cfg.Universe.MaxAssets > 0 && len(out) > cfg.Universe.MaxAssets {
		out = out[:cfg.Universe.MaxAssets]
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("universe is empty")
	}
	return out, nil
}
