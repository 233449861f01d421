package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"PatternSentinel/internal/notifier"
	"PatternSentinel/internal/recorder"
	"PatternSentinel/internal/scanner"
)

// Scheduler runs the universe scan on a cron schedule and serves Telegram
// commands against the latest result.
type Scheduler struct {
	Cron     *cron.Cron
	Scanner  *scanner.Scanner
	Notifier *notifier.TelegramNotifier
	Recorder recorder.Recorder
	CSVDir   string
	Mode     string
	Ctx      context.Context

	mu         sync.Mutex
	lastReport string
	scanning   bool
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, sc *scanner.Scanner, tn *notifier.TelegramNotifier, rec recorder.Recorder, csvDir, mode string) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Scanner:  sc,
		Notifier: tn,
		Recorder: rec,
		CSVDir:   csvDir,
		Mode:     mode,
		Ctx:      ctx,
	}
}

// Register registers the scan task under the given cron expression.
func (s *Scheduler) Register(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunScanNow executes the scan task immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunScanNow() {
	s.scanTask()
}

func (s *Scheduler) scanTask() {
	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		log.Println("[WARN] scan already in progress, skipping trigger")
		return
	}
	s.scanning = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.scanning = false
		s.mu.Unlock()
	}()

	log.Println("[INFO] running universe scan")
	start := time.Now()
	patterns, stats := s.Scanner.ScanAll(s.Ctx)
	log.Printf("[INFO] scan done in %v: scanned=%d found=%d surfaced=%d errors=%d",
		time.Since(start).Round(time.Second), stats.Scanned, stats.Found, stats.Surfaced, stats.Errors)

	report := notifier.FormatScanReport(patterns, stats, start.Format("2006-01-02 15:04"))
	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()

	s.trySend(report)

	if path, err := notifier.ExportCSV(s.CSVDir, patterns, start.Format("2006-01-02")); err != nil {
		log.Printf("[ERROR] export csv: %v", err)
	} else {
		log.Printf("[INFO] csv written: %s", path)
	}

	if err := s.Recorder.RecordScan(recorder.RunFromStats(s.Mode, stats), patterns); err != nil {
		log.Printf("[ERROR] record scan: %v", err)
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/scan":
		go s.scanTask()
		return "⏳ Scan started, report will follow."
	case "/last":
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.lastReport == "" {
			return "No scan has completed yet."
		}
		return s.lastReport
	case "/help", "/start":
		return notifier.FormatHelp()
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
