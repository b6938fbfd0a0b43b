package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/amishk599/internradar/internal/adapter"
	"github.com/amishk599/internradar/internal/config"
	"github.com/amishk599/internradar/internal/model"
	"github.com/amishk599/internradar/internal/notifier"
	"github.com/amishk599/internradar/internal/ratelimit"
	"github.com/amishk599/internradar/internal/retry"
	"github.com/amishk599/internradar/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "internradar",
	Short: "Internship radar for AICTE and Internshala",
	Long:  "internradar scrapes AICTE and Internshala for internships matching your keywords and sends new ones to Telegram.",
	// Default to `start` so that `internradar` with no args runs the bot.
	// Hosted deployments invoke the binary directly.
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: INTERNRADAR_CONFIG env var or ./config.yaml if present)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig loads .env (if any) into the environment, then resolves and
// parses the config.
// Priority: explicit path arg > INTERNRADAR_CONFIG env var > "./config.yaml" > defaults only.
func loadConfig(path string) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return config.Load(config.ResolvePath(path))
}

func setupLogger(dbg bool) *slog.Logger {
	return newLogger(os.Stdout, dbg)
}

func newLogger(w io.Writer, dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// teeLogger returns a logger that also appends to path. The returned func
// closes the file.
func teeLogger(dbg bool, path string) (*slog.Logger, func(), error) {
	if path == "" {
		return setupLogger(dbg), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return newLogger(io.MultiWriter(os.Stdout, f), dbg), func() { f.Close() }, nil
}

func newHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.HTTPTimeout}
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (model.Notifier, error) {
	switch cfg.Notification.Type {
	case "telegram":
		return notifier.NewTelegramNotifier(
			cfg.Notification.BotToken,
			cfg.Notification.ChatID,
			httpClient,
			notifier.NewFormatter(cfg.Location),
			ratelimit.NewLimiter(cfg.Notification.SendDelay),
			logger,
		)
	default:
		logger.Info("using log notifier")
		return notifier.NewLogNotifier(logger), nil
	}
}

// createSources builds the bare platform adapters in polling order.
func createSources(cfg *config.Config, httpClient *http.Client, fetchLimiter *ratelimit.Limiter, logger *slog.Logger) []model.Source {
	var sources []model.Source
	if cfg.Platforms.AICTE.Enabled {
		sources = append(sources, adapter.NewAICTEAdapter(httpClient, fetchLimiter, cfg.Platforms.AICTE.Pages, logger))
	}
	if cfg.Platforms.Internshala.Enabled {
		sources = append(sources, adapter.NewInternshalaAdapter(httpClient, fetchLimiter, cfg.Keywords, cfg.Platforms.Internshala.MaxSearches, logger))
	}
	return sources
}

// buildSources wraps each adapter with retry and spaces consecutive
// platforms by rate_limit.platform_delay.
func buildSources(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) []model.Source {
	logger.Info("rate limits",
		"min_delay", cfg.RateLimit.MinDelay.String(),
		"platform_delay", cfg.RateLimit.PlatformDelay.String(),
	)
	fetchLimiter := ratelimit.NewLimiter(cfg.RateLimit.MinDelay)
	platformLimiter := ratelimit.NewLimiter(cfg.RateLimit.PlatformDelay)

	var sources []model.Source
	for _, src := range createSources(cfg, httpClient, fetchLimiter, logger) {
		var s model.Source = retry.NewRetrySource(src, 2, 5*time.Second, logger)
		s = ratelimit.NewRateLimitedSource(s, platformLimiter, "platforms")
		sources = append(sources, s)
		logger.Info("registered platform", "platform", string(src.Platform()))
	}
	return sources
}

// openSeenSet opens the configured backend and loads the seen set from it.
func openSeenSet(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store.SeenSet, model.SeenBackend, error) {
	backend, err := store.Open(ctx, store.Options{
		Type: cfg.Store.Type,
		Path: cfg.Store.Path,
		URL:  cfg.Store.URL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Store.Type, err)
	}
	seen := store.NewSeenSet(backend, cfg.Store.MaxEntries, logger)
	seen.Load(ctx)
	return seen, backend, nil
}

func logConfig(cfg *config.Config, logger *slog.Logger) {
	logger.Info("config loaded",
		"interval", cfg.CheckInterval.String(),
		"platforms", cfg.Platforms.EnabledCount(),
		"keywords", len(cfg.Keywords),
		"notifier", cfg.Notification.Type,
		"store", cfg.Store.Type,
		"timezone", cfg.Timezone,
	)
}
