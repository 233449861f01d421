package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"PatternSentinel/internal/collector"
	"PatternSentinel/internal/config"
	"PatternSentinel/internal/model"
	"PatternSentinel/internal/notifier"
	"PatternSentinel/internal/pattern"
	"PatternSentinel/internal/recorder"
	"PatternSentinel/internal/scanner"
	"PatternSentinel/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] PatternSentinel starting...")

	// .env is optional; real env vars win either way.
	if err := godotenv.Load(); err == nil {
		log.Println("[INFO] loaded .env")
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	var fetcher collector.Fetcher
	switch cfg.Data.Provider {
	case "binance":
		fetcher = collector.NewBinanceFetcher(cfg.Data.BinanceAPIKey, cfg.Data.BinanceSecretKey)
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] data provider: %s", fetcher.Name())

	primaryTF := model.Timeframe(cfg.Data.PrimaryTimeframe)
	coll := collector.NewCollector(fetcher, primaryTF, model.AllTimeframes,
		cfg.Pattern.LookbackBars, cfg.RSI.Period)

	detector, err := pattern.NewDetector(cfg)
	if err != nil {
		log.Fatalf("[FATAL] init detector: %v", err)
	}

	universe, err := scanner.LoadUniverse(cfg)
	if err != nil {
		log.Fatalf("[FATAL] load universe: %v", err)
	}
	log.Printf("[INFO] universe: %d assets, mode: %s", len(universe), cfg.Pattern.Mode)

	sc := scanner.New(cfg, coll, detector, universe)

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, sc, tn, rec, cfg.Output.CSVDir, cfg.Pattern.Mode)
	if err := sched.Register(cfg.Schedule.ScanCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, scanning now")
		go sched.RunScanNow()
	}

	log.Println("[INFO] PatternSentinel is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] PatternSentinel stopped")
}
