package recorder

import (
	"PatternSentinel/internal/model"
	"PatternSentinel/internal/scanner"
)

// ScanRun summarizes one full universe scan for the history tables.
type ScanRun struct {
	Mode     string
	Scanned  int
	Found    int
	Surfaced int
	Errors   int
}

// Recorder persists scan history for later analysis.
type Recorder interface {
	RecordScan(run *ScanRun, patterns []*model.ScoredPattern) error
	Close() error
}

// RunFromStats builds a ScanRun from scanner output.
func RunFromStats(mode string, stats scanner.Stats) *ScanRun {
	return &ScanRun{
		Mode:     mode,
		Scanned:  stats.Scanned,
		Found:    stats.Found,
		Surfaced: stats.Surfaced,
		Errors:   stats.Errors,
	}
}
