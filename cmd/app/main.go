package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"SignalScan/internal/di"
	"SignalScan/pkg/config"
	applogger "SignalScan/pkg/logger"
	"SignalScan/pkg/server"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	mode := flag.String("mode", server.ModeRun, "run (one screening pass), serve (API + schedule) or prep (normalise raw CSVs)")
	rawDir := flag.String("raw", "raw", "prep: directory of raw downloads")
	outDir := flag.String("out", "", "prep: output directory (defaults to source.data_dir)")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *mode == server.ModePrep {
		l, err := applogger.New(&applogger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
		if err != nil {
			log.Fatalf("logger init failed: %v", err)
		}
		if err := server.Prep(ctx, cfg, *rawDir, *outDir, l); err != nil {
			l.Error("prep failed", applogger.Error(err))
			os.Exit(1)
		}
		return
	}

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	err = app.Run(ctx, *mode)
	cleanup()
	if err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
