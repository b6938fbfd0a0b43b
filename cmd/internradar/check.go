package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/internradar/internal/filter"
	"github.com/amishk599/internradar/internal/model"
	"github.com/amishk599/internradar/internal/notifier"
	"github.com/amishk599/internradar/internal/poller"
	"github.com/amishk599/internradar/internal/store"
)

var checkNotify bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one cycle, print matches, exit",
	Long: "One-shot cycle against every enabled platform. Matches are logged instead of sent " +
		"unless --notify is given. Nothing is loaded from or written to the seen store.",
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkNotify, "notify", false, "deliver matches through the configured notifier")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logConfig(cfg, logger)
	logger.Info("check mode: no postings will be marked as seen")

	httpClient := newHTTPClient(cfg)

	var n model.Notifier = notifier.NewLogNotifier(logger)
	if checkNotify {
		n, err = setupNotifier(cfg, httpClient, logger)
		if err != nil {
			logger.Error("failed to set up notifier", "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seen := store.NewSeenSet(store.NewNopBackend(), cfg.Store.MaxEntries, logger)
	p := poller.NewPoller(buildSources(cfg, httpClient, logger), filter.NewKeywordFilter(cfg.Keywords), seen, n, logger)
	report := p.RunCycle(ctx)

	if failed := report.FailedPlatforms(); len(failed) > 0 {
		logger.Warn("check finished with failed platforms", "failed", failed)
	}
	logger.Info("check complete", "found", report.TotalFound(), "matched", report.TotalMatched())
	return nil
}
