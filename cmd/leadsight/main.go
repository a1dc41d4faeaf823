package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/leadsight/leadsight/audit"
	"github.com/leadsight/leadsight/browser"
	"github.com/leadsight/leadsight/config"
	"github.com/leadsight/leadsight/log"
	"github.com/leadsight/leadsight/report"
	"github.com/leadsight/leadsight/sources"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (default: ./leadsight.yaml if present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := log.Init(cfg.Log); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	// SIGINT/SIGTERM stops the batch from taking new sites; the in-flight
	// audit finishes or times out on its own deadlines.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	targets, err := sources.Resolve(ctx, cfg.Input)
	if err != nil {
		log.Logger.Error("failed to resolve target sites", zap.Error(err))
		os.Exit(1)
	}
	log.Logger.Info("targets resolved", zap.Int("sites", len(targets)))

	session, err := browser.Open(cfg.Browser, cfg.Screenshot, cfg.Audit.NavigationTimeout)
	if err != nil {
		// No session means no audits are possible; this is the only
		// failure that aborts the whole batch.
		log.Logger.Error("failed to open browser session", zap.Error(err))
		os.Exit(1)
	}
	defer session.Close()

	runStamp := audit.RunStamp(time.Now())
	auditor := audit.New(session, cfg, runStamp)
	renderer := report.New(cfg.Report, runStamp)

	summary := audit.RunBatch(ctx, auditor, targets, renderer)

	fmt.Printf("\nAudit run %s: %d succeeded, %d failed", summary.RunID, summary.Succeeded, summary.Failed)
	if summary.Skipped > 0 {
		fmt.Printf(", %d skipped", summary.Skipped)
	}
	fmt.Printf("\nArtifacts in %s\n", cfg.Report.OutputDir)

	for _, res := range summary.Results {
		if !res.Success {
			fmt.Printf("  failed: %s (%s): %s\n", res.SiteName, res.URL, res.Error)
		}
	}
}
