package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PatternSentinel/internal/model"
)

func testPattern(symbol string) *model.ScoredPattern {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return &model.ScoredPattern{
		Symbol:    symbol,
		AssetType: "stock",
		Candidate: model.PatternCandidate{
			Peak1:          model.Peak{Index: 15, Time: base, Price: 100},
			Trough:         model.Trough{Index: 25, Time: base.AddDate(0, 0, 10), Price: 94},
			Peak2:          model.Peak{Index: 35, Time: base.AddDate(0, 0, 20), Price: 100.4},
			CandleDistance: 20,
			TroughDepthPct: 6,
		},
		Status:        model.StatusConfirmed,
		Mode:          "detection",
		Score:         4,
		ConfidencePct: 70,
		Neckline:      94,
		GeneratedAt:   base.AddDate(0, 0, 30),
	}
}

func TestSQLiteRecorder_RecordScan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	rec, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer rec.Close()

	run := &ScanRun{Mode: "detection", Scanned: 10, Found: 2, Surfaced: 2}
	patterns := []*model.ScoredPattern{testPattern("AAPL"), testPattern("MSFT")}
	require.NoError(t, rec.RecordScan(run, patterns))

	var runs, rows int
	require.NoError(t, rec.db.QueryRow("SELECT COUNT(*) FROM scan_runs").Scan(&runs))
	require.NoError(t, rec.db.QueryRow("SELECT COUNT(*) FROM patterns").Scan(&rows))
	assert.Equal(t, 1, runs)
	assert.Equal(t, 2, rows)

	var symbol string
	var score int
	require.NoError(t, rec.db.QueryRow(
		"SELECT symbol, score FROM patterns ORDER BY symbol LIMIT 1").Scan(&symbol, &score))
	assert.Equal(t, "AAPL", symbol)
	assert.Equal(t, 4, score)
}

func TestSQLiteRecorder_ReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	rec, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	require.NoError(t, rec.RecordScan(&ScanRun{Mode: "detection", Scanned: 1}, nil))
	require.NoError(t, rec.Close())

	rec2, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer rec2.Close()

	var runs int
	require.NoError(t, rec2.db.QueryRow("SELECT COUNT(*) FROM scan_runs").Scan(&runs))
	assert.Equal(t, 1, runs)
}
