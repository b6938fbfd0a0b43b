package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/internradar/internal/filter"
	"github.com/amishk599/internradar/internal/health"
	"github.com/amishk599/internradar/internal/poller"
	"github.com/amishk599/internradar/internal/scheduler"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the radar",
	Long:  "Start the scheduler (and the health endpoint when enabled); blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, closeLog, err := teeLogger(debug, cfg.Log.File)
	if err != nil {
		logger = setupLogger(debug)
		logger.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer closeLog()
	logConfig(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seen, backend, err := openSeenSet(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	httpClient := newHTTPClient(cfg)
	n, err := setupNotifier(cfg, httpClient, logger)
	if err != nil {
		logger.Error("failed to set up notifier", "error", err)
		os.Exit(1)
	}

	sources := buildSources(cfg, httpClient, logger)
	p := poller.NewPoller(sources, filter.NewKeywordFilter(cfg.Keywords), seen, n, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return scheduler.NewScheduler(p, cfg.CheckInterval, logger).Run(gctx)
	})
	if cfg.Health.Enabled {
		status := func() health.Status {
			last, ok := p.LastReport()
			return health.NewStatus(p.Phase().String(), last, ok)
		}
		srv := health.NewServer(cfg.Health.Port, status, logger)
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("radar stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
