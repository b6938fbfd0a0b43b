package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/internradar/internal/audit"
	"github.com/amishk599/internradar/internal/config"
	"github.com/amishk599/internradar/internal/filter"
	"github.com/amishk599/internradar/internal/model"
	"github.com/amishk599/internradar/internal/ratelimit"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Browse postings interactively (TUI)",
	Long:  "Shows the platform picker TUI, then a split-pane view of every scraped posting next to the ones your keywords match.",
	RunE:  runAuditCmd,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func runAuditCmd(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Audit mode runs a TUI; any log output written to the terminal
	// corrupts the display.
	silentLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runAudit(cfg, silentLogger)
	return nil
}

func runAudit(cfg *config.Config, logger *slog.Logger) {
	sources := createSources(cfg, newHTTPClient(cfg), ratelimit.NewLimiter(cfg.RateLimit.MinDelay), logger)
	if len(sources) == 0 {
		fmt.Println("No enabled platforms in config.")
		return
	}
	platforms := make([]model.Platform, len(sources))
	for i, s := range sources {
		platforms[i] = s.Platform()
	}

	// Best effort: mark postings that were already notified.
	var isSeen func(string) bool
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	seen, backend, err := openSeenSet(ctx, cfg, logger)
	cancel()
	if err == nil {
		defer backend.Close()
		isSeen = seen.Contains
	}

	keywordFilter := filter.NewKeywordFilter(cfg.Keywords)
	for {
		choice, err := audit.RunPlatformPicker(platforms, keywordFilter.Keywords())
		if err != nil {
			fmt.Printf("Picker error: %v\n", err)
			return
		}
		if choice < 0 {
			return
		}
		src := sources[choice]

		postings, err := audit.RunLoader(src.Platform(), src.FetchPostings)
		if err != nil {
			fmt.Printf("Error fetching postings: %v\n", err)
			continue
		}

		var matched []model.Posting
		for _, p := range postings {
			if keywordFilter.Match(p) {
				matched = append(matched, p)
			}
		}

		wantQuit, err := audit.RunAuditTUI(src.Platform(), postings, matched, isSeen)
		if err != nil {
			fmt.Printf("TUI error: %v\n", err)
		}
		if wantQuit {
			return
		}
		// else: loop → back to picker
	}
}
