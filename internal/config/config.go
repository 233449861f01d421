package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// PatternConfig holds the structural thresholds for double-top validation.
type PatternConfig struct {
	TolerancePct       float64 `yaml:"tolerance_threshold_pct"`
	MinCandleDistance  int     `yaml:"min_candle_distance"`
	MaxCandleDistance  int     `yaml:"max_candle_distance"`
	MinTroughDepthPct  float64 `yaml:"min_trough_depth_pct"`
	MinReversalDropPct float64 `yaml:"min_reversal_drop_pct"`
	MinRallyRisePct    float64 `yaml:"min_rally_rise_pct"`
	MaxRetraceFraction float64 `yaml:"max_retrace_fraction"`
	PeakWindow         int     `yaml:"peak_window"`
	LookbackBars       int     `yaml:"lookback_bars"`
	Mode               string  `yaml:"mode"` // "prediction" or "detection"
	RecencyWindowBars  int     `yaml:"recency_window_bars"`
}

// RSIConfig holds momentum-indicator settings.
type RSIConfig struct {
	Period              int     `yaml:"period"`
	DivergenceMinDiff   float64 `yaml:"divergence_min_diff"`
	DivergenceRequired  bool    `yaml:"divergence_required"`
	OverboughtThreshold float64 `yaml:"overbought_threshold"`
}

// ScoringConfig holds result-filtering settings.
type ScoringConfig struct {
	MinScoreToReport          int     `yaml:"min_score_to_report"`
	VolumeDeclineThresholdPct float64 `yaml:"volume_decline_threshold_pct"`
	MinConfidencePct          float64 `yaml:"min_confidence_pct"`
}

// Config holds all application configuration.
type Config struct {
	Data struct {
		Provider         string `yaml:"provider"` // "yahoo" or "binance"
		PrimaryTimeframe string `yaml:"primary_timeframe"`
		BinanceAPIKey    string `yaml:"binance_api_key"`
		BinanceSecretKey string `yaml:"binance_secret_key"`
	} `yaml:"data"`
	Pattern PatternConfig `yaml:"pattern"`
	RSI     RSIConfig     `yaml:"rsi"`
	Scoring ScoringConfig `yaml:"scoring"`
	Universe struct {
		Symbols   []string `yaml:"symbols"`
		File      string   `yaml:"file"` // optional JSON universe, overrides Symbols
		MaxAssets int      `yaml:"max_assets_to_scan"`
	} `yaml:"universe"`
	Scan struct {
		Concurrency int `yaml:"concurrency"`
	} `yaml:"scan"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Output struct {
		CSVDir string `yaml:"csv_dir"`
	} `yaml:"output"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides
// and defaults. Threshold sanity is checked separately by Validate.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		cfg.Data.BinanceAPIKey = v
	}
	if v := os.Getenv("BINANCE_SECRET_KEY"); v != "" {
		cfg.Data.BinanceSecretKey = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.Data.Provider = v
	}
	if v := os.Getenv("SCAN_MODE"); v != "" {
		cfg.Pattern.Mode = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_SCAN"); v != "" {
		cfg.Schedule.ScanCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SCAN_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scan.Concurrency = n
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Data.Provider == "" {
		cfg.Data.Provider = "yahoo"
	}
	if cfg.Data.PrimaryTimeframe == "" {
		cfg.Data.PrimaryTimeframe = "daily"
	}
	p := &cfg.Pattern
	if p.TolerancePct == 0 {
		p.TolerancePct = 3.0
	}
	if p.MinCandleDistance == 0 {
		p.MinCandleDistance = 8
	}
	if p.MaxCandleDistance == 0 {
		p.MaxCandleDistance = 67
	}
	if p.MinTroughDepthPct == 0 {
		p.MinTroughDepthPct = 3.0
	}
	if p.MinReversalDropPct == 0 {
		p.MinReversalDropPct = 1.5
	}
	if p.MinRallyRisePct == 0 {
		p.MinRallyRisePct = 1.5
	}
	if p.MaxRetraceFraction == 0 {
		p.MaxRetraceFraction = 0.5
	}
	if p.PeakWindow == 0 {
		p.PeakWindow = 5
	}
	if p.LookbackBars == 0 {
		p.LookbackBars = 100
	}
	if p.Mode == "" {
		p.Mode = "detection"
	}
	if p.RecencyWindowBars == 0 {
		p.RecencyWindowBars = 50
	}
	r := &cfg.RSI
	if r.Period == 0 {
		r.Period = 14
	}
	if r.DivergenceMinDiff == 0 {
		r.DivergenceMinDiff = 0.5
	}
	if r.OverboughtThreshold == 0 {
		r.OverboughtThreshold = 70
	}
	s := &cfg.Scoring
	if s.MinScoreToReport == 0 {
		s.MinScoreToReport = 3
	}
	if s.VolumeDeclineThresholdPct == 0 {
		s.VolumeDeclineThresholdPct = 20
	}
	if s.MinConfidencePct == 0 {
		s.MinConfidencePct = 40
	}
	if cfg.Scan.Concurrency == 0 {
		cfg.Scan.Concurrency = 4
	}
	if cfg.Schedule.ScanCron == "" {
		cfg.Schedule.ScanCron = "0 0 22 * * 1-5"
	}
	if cfg.Output.CSVDir == "" {
		cfg.Output.CSVDir = "data/reports"
	}
}

// Validate fails fast on configuration values outside sane bounds.
func (c *Config) Validate() error {
	p := c.Pattern
	if p.TolerancePct < 0 || p.MinTroughDepthPct < 0 || p.MinReversalDropPct < 0 || p.MinRallyRisePct < 0 {
		return fmt.Errorf("pattern thresholds must not be negative")
	}
	if p.MinCandleDistance <= 0 || p.MaxCandleDistance <= 0 {
		return fmt.Errorf("candle distance bounds must be positive")
	}
	if p.MinCandleDistance >= p.MaxCandleDistance {
		return fmt.Errorf("min_candle_distance (%d) must be below max_candle_distance (%d)",
			p.MinCandleDistance, p.MaxCandleDistance)
	}
	if p.MaxRetraceFraction <= 0 || p.MaxRetraceFraction > 1 {
		return fmt.Errorf("max_retrace_fraction must be in (0, 1], got %v", p.MaxRetraceFraction)
	}
	if p.PeakWindow <= 0 {
		return fmt.Errorf("peak_window must be positive")
	}
	if p.LookbackBars <= 2*p.PeakWindow {
		return fmt.Errorf("lookback_bars (%d) too small for peak_window %d", p.LookbackBars, p.PeakWindow)
	}
	if p.Mode != "prediction" && p.Mode != "detection" {
		return fmt.Errorf("pattern.mode must be \"prediction\" or \"detection\", got %q", p.Mode)
	}
	if p.RecencyWindowBars <= 0 {
		return fmt.Errorf("recency_window_bars must be positive")
	}
	if c.RSI.Period <= 0 {
		return fmt.Errorf("rsi.period must be positive")
	}
	if c.RSI.DivergenceMinDiff < 0 {
		return fmt.Errorf("rsi.divergence_min_diff must not be negative")
	}
	if c.RSI.OverboughtThreshold <= 0 || c.RSI.OverboughtThreshold >= 100 {
		return fmt.Errorf("rsi.overbought_threshold must be in (0, 100)")
	}
	if c.Scoring.MinScoreToReport < 0 || c.Scoring.MinScoreToReport > 6 {
		return fmt.Errorf("scoring.min_score_to_report must be in [0, 6]")
	}
	if c.Scoring.MinConfidencePct < 0 || c.Scoring.MinConfidencePct > 100 {
		return fmt.Errorf("scoring.min_confidence_pct must be in [0, 100]")
	}
	if c.Data.Provider != "yahoo" && c.Data.Provider != "binance" {
		return fmt.Errorf("data.provider must be \"yahoo\" or \"binance\", got %q", c.Data.Provider)
	}
	switch c.Data.PrimaryTimeframe {
	case "intraday", "daily", "weekly", "monthly":
	default:
		return fmt.Errorf("data.primary_timeframe %q is not a supported timeframe", c.Data.PrimaryTimeframe)
	}
	if c.Scan.Concurrency <= 0 {
		return fmt.Errorf("scan.concurrency must be positive")
	}
	if len(c.Universe.Symbols) == 0 && c.Universe.File == "" {
		return fmt.Errorf("universe.symbols or universe.file is required")
	}
	return nil
}
