package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // containers often ship without a zoneinfo database

	"gopkg.in/yaml.v3"

	"github.com/amishk599/internradar/internal/model"
)

// Config is the root configuration for the internradar bot.
type Config struct {
	CheckInterval time.Duration
	HTTPTimeout   time.Duration
	Timezone      string
	Location      *time.Location
	Keywords      []string
	Platforms     PlatformsConfig
	RateLimit     RateLimitConfig
	Notification  NotificationConfig
	Store         StoreConfig
	Health        HealthConfig
	Log           LogConfig
}

// PlatformsConfig toggles and tunes each listing source.
type PlatformsConfig struct {
	AICTE       AICTEConfig
	Internshala InternshalaConfig
}

type AICTEConfig struct {
	Enabled bool `yaml:"enabled"`
	Pages   int  `yaml:"pages"`
}

type InternshalaConfig struct {
	Enabled     bool `yaml:"enabled"`
	MaxSearches int  `yaml:"max_searches"`
}

// EnabledCount returns how many platforms are switched on.
func (p PlatformsConfig) EnabledCount() int {
	n := 0
	if p.AICTE.Enabled {
		n++
	}
	if p.Internshala.Enabled {
		n++
	}
	return n
}

// RateLimitConfig controls politeness delays.
type RateLimitConfig struct {
	MinDelay      time.Duration // between requests to the same platform
	PlatformDelay time.Duration // between consecutive platforms in a cycle
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type      string // "telegram" or "log"
	BotToken  string
	ChatID    string
	SendDelay time.Duration
}

// StoreConfig selects the seen-set snapshot backend.
type StoreConfig struct {
	Type       string `yaml:"type"` // file, sqlite, redis, postgres, mongo
	Path       string `yaml:"path"`
	URL        string `yaml:"url"`
	MaxEntries int    `yaml:"max_entries"`
}

// HealthConfig controls the optional HTTP liveness endpoint.
type HealthConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type LogConfig struct {
	File string `yaml:"file"`
}

const (
	defaultTimezone = "Asia/Kolkata"
	defaultPort     = 10000
)

// DefaultKeywords is the keyword list used when none is configured.
var DefaultKeywords = []string{
	"data science",
	"machine learning",
	"artificial intelligence",
	"ai",
	"ml",
	"data analyst",
	"ai/ml",
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	CheckInterval string             `yaml:"check_interval"`
	HTTPTimeout   string             `yaml:"http_timeout"`
	Timezone      string             `yaml:"timezone"`
	Keywords      []string           `yaml:"keywords"`
	Platforms     rawPlatformsConfig `yaml:"platforms"`
	RateLimit     rawRateLimitConfig `yaml:"rate_limit"`
	Notification  rawNotification    `yaml:"notification"`
	Store         StoreConfig        `yaml:"store"`
	Health        HealthConfig       `yaml:"health"`
	Log           LogConfig          `yaml:"log"`
}

type rawPlatformsConfig struct {
	AICTE       AICTEConfig       `yaml:"aicte"`
	Internshala InternshalaConfig `yaml:"internshala"`
}

type rawRateLimitConfig struct {
	MinDelay      string `yaml:"min_delay"`
	PlatformDelay string `yaml:"platform_delay"`
}

type rawNotification struct {
	Type      string `yaml:"type"`
	BotToken  string `yaml:"bot_token"`
	ChatID    string `yaml:"chat_id"`
	SendDelay string `yaml:"send_delay"`
}

func defaultRaw() rawConfig {
	return rawConfig{
		CheckInterval: "1h",
		HTTPTimeout:   "30s",
		Timezone:      defaultTimezone,
		Keywords:      append([]string(nil), DefaultKeywords...),
		Platforms: rawPlatformsConfig{
			AICTE:       AICTEConfig{Enabled: true, Pages: 1},
			Internshala: InternshalaConfig{Enabled: true, MaxSearches: 3},
		},
		RateLimit: rawRateLimitConfig{MinDelay: "2s", PlatformDelay: "3s"},
		Notification: rawNotification{
			Type:      "telegram",
			SendDelay: "2s",
		},
		Store:  StoreConfig{Type: "file", MaxEntries: 2000},
		Health: HealthConfig{Port: defaultPort},
	}
}

// Load reads the optional YAML config file at path, applies environment
// overrides, validates the result and returns Config. An empty path means
// defaults plus environment only.
func Load(path string) (*Config, error) {
	raw := defaultRaw()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		// Expand environment variables
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(&raw); err != nil {
		return nil, err
	}

	cfg, err := build(raw)
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolvePath picks the config file to load.
// Priority: explicit path > INTERNRADAR_CONFIG env var > "./config.yaml" if it exists.
// An empty result means no file.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("INTERNRADAR_CONFIG"); env != "" {
		return env
	}
	if _, err := os.Stat("config.yaml"); errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	return "config.yaml"
}

// applyEnv overlays the deployment environment variables onto raw.
func applyEnv(raw *rawConfig) error {
	if v, ok := os.LookupEnv("TELEGRAM_BOT_TOKEN"); ok && v != "" {
		raw.Notification.BotToken = v
	}
	if v, ok := os.LookupEnv("TELEGRAM_CHAT_ID"); ok && v != "" {
		raw.Notification.ChatID = v
	}
	if v, ok := os.LookupEnv("CHECK_INTERVAL_HOURS"); ok && v != "" {
		hours, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return &model.ConfigError{Field: "CHECK_INTERVAL_HOURS", Reason: fmt.Sprintf("not a number: %q", v)}
		}
		raw.CheckInterval = time.Duration(hours * float64(time.Hour)).String()
	}
	for name, dst := range map[string]*bool{
		"ENABLE_AICTE":       &raw.Platforms.AICTE.Enabled,
		"ENABLE_INTERNSHALA": &raw.Platforms.Internshala.Enabled,
	} {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = strings.EqualFold(strings.TrimSpace(v), "true")
		}
	}
	if v, ok := os.LookupEnv("KEYWORDS"); ok && v != "" {
		raw.Keywords = splitList(v)
	}
	if v, ok := os.LookupEnv("SEEN_FILE"); ok && v != "" {
		raw.Store.Path = v
	}
	if v, ok := os.LookupEnv("STORE_TYPE"); ok && v != "" {
		raw.Store.Type = v
	}
	if v, ok := os.LookupEnv("STORE_URL"); ok && v != "" {
		raw.Store.URL = v
	}
	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return &model.ConfigError{Field: "PORT", Reason: fmt.Sprintf("not a number: %q", v)}
		}
		raw.Health.Port = port
	}
	// Hosting platforms that set RENDER expect something listening on PORT.
	if os.Getenv("RENDER") != "" {
		raw.Health.Enabled = true
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, &model.ConfigError{Field: field, Reason: fmt.Sprintf("invalid duration %q", value)}
	}
	return d, nil
}

func build(raw rawConfig) (*Config, error) {
	interval, err := parseDuration("check_interval", raw.CheckInterval)
	if err != nil {
		return nil, err
	}
	httpTimeout, err := parseDuration("http_timeout", raw.HTTPTimeout)
	if err != nil {
		return nil, err
	}
	minDelay, err := parseDuration("rate_limit.min_delay", raw.RateLimit.MinDelay)
	if err != nil {
		return nil, err
	}
	platformDelay, err := parseDuration("rate_limit.platform_delay", raw.RateLimit.PlatformDelay)
	if err != nil {
		return nil, err
	}
	sendDelay, err := parseDuration("notification.send_delay", raw.Notification.SendDelay)
	if err != nil {
		return nil, err
	}

	tz := raw.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, &model.ConfigError{Field: "timezone", Reason: fmt.Sprintf("unknown time zone %q", tz)}
	}

	return &Config{
		CheckInterval: interval,
		HTTPTimeout:   httpTimeout,
		Timezone:      tz,
		Location:      loc,
		Keywords:      raw.Keywords,
		Platforms: PlatformsConfig{
			AICTE:       raw.Platforms.AICTE,
			Internshala: raw.Platforms.Internshala,
		},
		RateLimit: RateLimitConfig{
			MinDelay:      minDelay,
			PlatformDelay: platformDelay,
		},
		Notification: NotificationConfig{
			Type:      strings.ToLower(strings.TrimSpace(raw.Notification.Type)),
			BotToken:  strings.TrimSpace(raw.Notification.BotToken),
			ChatID:    strings.TrimSpace(raw.Notification.ChatID),
			SendDelay: sendDelay,
		},
		Store: StoreConfig{
			Type:       strings.ToLower(strings.TrimSpace(raw.Store.Type)),
			Path:       raw.Store.Path,
			URL:        raw.Store.URL,
			MaxEntries: raw.Store.MaxEntries,
		},
		Health: raw.Health,
		Log:    raw.Log,
	}, nil
}

func validate(cfg *Config) error {
	if cfg.CheckInterval <= 0 {
		return &model.ConfigError{Field: "check_interval", Reason: fmt.Sprintf("must be positive, got %v", cfg.CheckInterval)}
	}
	if cfg.HTTPTimeout <= 0 {
		return &model.ConfigError{Field: "http_timeout", Reason: fmt.Sprintf("must be positive, got %v", cfg.HTTPTimeout)}
	}
	if cfg.Platforms.EnabledCount() == 0 {
		return &model.ConfigError{Field: "platforms", Reason: "at least one platform must be enabled"}
	}
	if cfg.Platforms.AICTE.Enabled && cfg.Platforms.AICTE.Pages < 1 {
		return &model.ConfigError{Field: "platforms.aicte.pages", Reason: "must be at least 1"}
	}
	if cfg.Platforms.Internshala.Enabled && cfg.Platforms.Internshala.MaxSearches < 1 {
		return &model.ConfigError{Field: "platforms.internshala.max_searches", Reason: "must be at least 1"}
	}
	if cfg.RateLimit.MinDelay < 0 || cfg.RateLimit.PlatformDelay < 0 || cfg.Notification.SendDelay < 0 {
		return &model.ConfigError{Field: "rate_limit", Reason: "delays must not be negative"}
	}

	switch cfg.Notification.Type {
	case "telegram":
		if cfg.Notification.BotToken == "" {
			return &model.ConfigError{Field: "notification.bot_token", Reason: "TELEGRAM_BOT_TOKEN is required when type is \"telegram\""}
		}
		if cfg.Notification.ChatID == "" {
			return &model.ConfigError{Field: "notification.chat_id", Reason: "TELEGRAM_CHAT_ID is required when type is \"telegram\""}
		}
		if !validChatID(cfg.Notification.ChatID) {
			return &model.ConfigError{Field: "notification.chat_id", Reason: fmt.Sprintf("must be numeric or an @channel name, got %q", cfg.Notification.ChatID)}
		}
	case "log":
	default:
		return &model.ConfigError{Field: "notification.type", Reason: fmt.Sprintf("unknown type %q (want telegram or log)", cfg.Notification.Type)}
	}

	switch cfg.Store.Type {
	case "file", "sqlite":
	case "redis", "postgres", "mongo":
		if cfg.Store.URL == "" {
			return &model.ConfigError{Field: "store.url", Reason: fmt.Sprintf("required when type is %q", cfg.Store.Type)}
		}
	default:
		return &model.ConfigError{Field: "store.type", Reason: fmt.Sprintf("unknown type %q", cfg.Store.Type)}
	}
	if cfg.Store.MaxEntries < 1 {
		return &model.ConfigError{Field: "store.max_entries", Reason: "must be at least 1"}
	}

	if cfg.Health.Port < 1 || cfg.Health.Port > 65535 {
		return &model.ConfigError{Field: "health.port", Reason: fmt.Sprintf("out of range: %d", cfg.Health.Port)}
	}

	return nil
}

func validChatID(id string) bool {
	if strings.HasPrefix(id, "@") {
		return len(id) > 1
	}
	_, err := strconv.ParseInt(id, 10, 64)
	return err == nil
}
