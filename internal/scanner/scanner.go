package scanner

import (
	"context"
	"log"
	"sort"
	"sync"

	"PatternSentinel/internal/collector"
	"PatternSentinel/internal/config"
	"PatternSentinel/internal/model"
	"PatternSentinel/internal/pattern"
)

// Stats summarizes one full universe scan.
type Stats struct {
	Scanned  int // symbols attempted
	Found    int // structurally valid patterns, any status
	Surfaced int // patterns that passed the reporting filter
	Errors   int // symbols that failed to fetch or analyze
}

// Scanner runs the detector over a universe of instruments with bounded
// concurrency. Failures are isolated per symbol; one bad instrument never
// aborts the scan.
type Scanner struct {
	cfg       *config.Config
	collector *collector.Collector
	detector  *pattern.Detector
	universe  []Asset
}

// New creates a Scanner over the given universe.
func New(cfg *config.Config, coll *collector.Collector, det *pattern.Detector, universe []Asset) *Scanner {
	return &Scanner{cfg: cfg, collector: coll, detector: det, universe: universe}
}

// ScanAll scans the whole universe and returns surfaced patterns sorted by
// descending score, ties broken by symbol for stable output.
func (s *Scanner) ScanAll(ctx context.Context) ([]*model.ScoredPattern, Stats) {
	type result struct {
		pattern *model.ScoredPattern
		err     error
	}

	jobs := make(chan Asset)
	results := make(chan result, len(s.universe))

	var wg sync.WaitGroup
	for w := 0; w < s.cfg.Scan.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for asset := range jobs {
				p, err := s.scanOne(ctx, asset)
				results <- result{pattern: p, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, asset := range s.universe {
			select {
			case jobs <- asset:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var stats Stats
	var found []*model.ScoredPattern
	for r := range results {
		stats.Scanned++
		if r.err != nil {
			stats.Errors++
			continue
		}
		if r.pattern == nil {
			continue
		}
		stats.Found++
		if s.shouldSurface(r.pattern) {
			found = append(found, r.pattern)
		}
	}
	stats.Surfaced = len(found)

	sort.Slice(found, func(i, j int) bool {
		if found[i].Score != found[j].Score {
			return found[i].Score > found[j].Score
		}
		return found[i].Symbol < found[j].Symbol
	})
	return found, stats
}

func (s *Scanner) scanOne(ctx context.Context, asset Asset) (*model.ScoredPattern, error) {
	series, err := s.collector.Collect(ctx, asset.Symbol, asset.AssetType)
	if err != nil {
		log.Printf("[WARN] %s: collect failed: %v", asset.Symbol, err)
		return nil, err
	}
	p, err := s.detector.Detect(series)
	if err != nil {
		log.Printf("[WARN] %s: detect failed: %v", asset.Symbol, err)
		return nil, err
	}
	return p, nil
}

// shouldSurface applies the reporting filter: rejected patterns never surface,
// and the rest must clear both the score and confidence floors.
func (s *Scanner) shouldSurface(p *model.ScoredPattern) bool {
	if p.Status == model.StatusRejected {
		return false
	}
	if p.Score < s.cfg.Scoring.MinScoreToReport {
		return false
	}
	return p.ConfidencePct >= s.cfg.Scoring.MinConfidencePct
}
