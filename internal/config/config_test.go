package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/internradar/internal/model"
)

var envVars = []string{
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "CHECK_INTERVAL_HOURS",
	"ENABLE_AICTE", "ENABLE_INTERNSHALA", "KEYWORDS", "SEEN_FILE",
	"STORE_TYPE", "STORE_URL", "PORT", "RENDER", "INTERNRADAR_CONFIG",
}

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range envVars {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func wantConfigError(t *testing.T, err error, field string) {
	t.Helper()
	var cfgErr *model.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *model.ConfigError for %s, got %v", field, err)
	}
	if cfgErr.Field != field {
		t.Errorf("ConfigError.Field = %q, want %q (%v)", cfgErr.Field, field, err)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
check_interval: 30m
timezone: UTC
keywords:
  - data science
  - ml
platforms:
  aicte:
    enabled: true
    pages: 2
  internshala:
    enabled: false
notification:
  type: telegram
  bot_token: "123:abc"
  chat_id: "@internships"
store:
  type: sqlite
  path: seen.db
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CheckInterval != 30*time.Minute {
		t.Errorf("CheckInterval = %v, want 30m", cfg.CheckInterval)
	}
	if cfg.Location != time.UTC {
		t.Errorf("Location = %v, want UTC", cfg.Location)
	}
	if len(cfg.Keywords) != 2 || cfg.Keywords[1] != "ml" {
		t.Errorf("Keywords = %v", cfg.Keywords)
	}
	if !cfg.Platforms.AICTE.Enabled || cfg.Platforms.AICTE.Pages != 2 {
		t.Errorf("AICTE = %+v", cfg.Platforms.AICTE)
	}
	if cfg.Platforms.Internshala.Enabled {
		t.Error("Internshala should be disabled")
	}
	// Unset nested fields keep their defaults.
	if cfg.Platforms.Internshala.MaxSearches != 3 {
		t.Errorf("Internshala.MaxSearches = %d, want default 3", cfg.Platforms.Internshala.MaxSearches)
	}
	if cfg.Notification.ChatID != "@internships" {
		t.Errorf("ChatID = %q", cfg.Notification.ChatID)
	}
	if cfg.Store.Type != "sqlite" || cfg.Store.Path != "seen.db" || cfg.Store.MaxEntries != 2000 {
		t.Errorf("Store = %+v", cfg.Store)
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001234")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CheckInterval != time.Hour {
		t.Errorf("CheckInterval = %v, want 1h", cfg.CheckInterval)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want 30s", cfg.HTTPTimeout)
	}
	if cfg.Timezone != "Asia/Kolkata" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
	if len(cfg.Keywords) != len(DefaultKeywords) {
		t.Errorf("Keywords = %v, want defaults", cfg.Keywords)
	}
	if !cfg.Platforms.AICTE.Enabled || !cfg.Platforms.Internshala.Enabled {
		t.Errorf("both platforms should default to enabled: %+v", cfg.Platforms)
	}
	if cfg.RateLimit.MinDelay != 2*time.Second || cfg.RateLimit.PlatformDelay != 3*time.Second {
		t.Errorf("RateLimit = %+v", cfg.RateLimit)
	}
	if cfg.Notification.SendDelay != 2*time.Second {
		t.Errorf("SendDelay = %v", cfg.Notification.SendDelay)
	}
	if cfg.Store.Type != "file" {
		t.Errorf("Store.Type = %q, want file", cfg.Store.Type)
	}
	if cfg.Health.Enabled || cfg.Health.Port != 10000 {
		t.Errorf("Health = %+v", cfg.Health)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
check_interval: 1h
notification:
  type: telegram
  bot_token: from-file
  chat_id: "1"
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("CHECK_INTERVAL_HOURS", "2")
	t.Setenv("ENABLE_AICTE", "False")
	t.Setenv("KEYWORDS", " python , , go ")
	t.Setenv("SEEN_FILE", "/data/seen.json")
	t.Setenv("PORT", "8080")
	t.Setenv("RENDER", "1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Notification.BotToken != "from-env" || cfg.Notification.ChatID != "42" {
		t.Errorf("Notification = %+v", cfg.Notification)
	}
	if cfg.CheckInterval != 2*time.Hour {
		t.Errorf("CheckInterval = %v, want 2h", cfg.CheckInterval)
	}
	if cfg.Platforms.AICTE.Enabled {
		t.Error("ENABLE_AICTE=False should disable AICTE")
	}
	if strings.Join(cfg.Keywords, "|") != "python|go" {
		t.Errorf("Keywords = %v", cfg.Keywords)
	}
	if cfg.Store.Path != "/data/seen.json" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if !cfg.Health.Enabled || cfg.Health.Port != 8080 {
		t.Errorf("Health = %+v", cfg.Health)
	}
}

func TestLoad_ExpandsEnvInFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("RADAR_TEST_TOKEN", "expanded-token")
	path := writeConfig(t, `
notification:
  type: telegram
  bot_token: ${RADAR_TEST_TOKEN}
  chat_id: "7"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Notification.BotToken != "expanded-token" {
		t.Errorf("BotToken = %q", cfg.Notification.BotToken)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "check_interval: [broken")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		field   string
	}{
		{
			name:    "missing bot token",
			content: "notification: {type: telegram, chat_id: \"1\"}",
			field:   "notification.bot_token",
		},
		{
			name:    "missing chat id",
			content: "notification: {type: telegram, bot_token: t}",
			field:   "notification.chat_id",
		},
		{
			name:    "malformed chat id",
			content: "notification: {type: telegram, bot_token: t, chat_id: my-channel}",
			field:   "notification.chat_id",
		},
		{
			name:    "zero interval",
			content: "check_interval: 0s\nnotification: {type: log}",
			field:   "check_interval",
		},
		{
			name:    "bad duration",
			content: "check_interval: hourly\nnotification: {type: log}",
			field:   "check_interval",
		},
		{
			name:    "non-numeric interval hours",
			content: "notification: {type: log}",
			env:     map[string]string{"CHECK_INTERVAL_HOURS": "one"},
			field:   "CHECK_INTERVAL_HOURS",
		},
		{
			name:    "no platforms",
			content: "platforms: {aicte: {enabled: false}, internshala: {enabled: false}}\nnotification: {type: log}",
			field:   "platforms",
		},
		{
			name:    "unknown notifier",
			content: "notification: {type: slack}",
			field:   "notification.type",
		},
		{
			name:    "network store without url",
			content: "notification: {type: log}\nstore: {type: redis}",
			field:   "store.url",
		},
		{
			name:    "unknown store",
			content: "notification: {type: log}\nstore: {type: etcd}",
			field:   "store.type",
		},
		{
			name:    "unknown timezone",
			content: "timezone: Mars/Olympus\nnotification: {type: log}",
			field:   "timezone",
		},
		{
			name:    "bad port",
			content: "notification: {type: log}\nhealth: {port: 70000}",
			field:   "health.port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.content))
			wantConfigError(t, err, tt.field)
		})
	}
}

func TestLoad_LogNotifierNeedsNoCredentials(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, "notification: {type: log}"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Notification.Type != "log" {
		t.Errorf("Type = %q", cfg.Notification.Type)
	}
}

func TestResolvePath(t *testing.T) {
	clearEnv(t)
	if got := ResolvePath("explicit.yaml"); got != "explicit.yaml" {
		t.Errorf("explicit: got %q", got)
	}

	t.Setenv("INTERNRADAR_CONFIG", "/etc/internradar.yaml")
	if got := ResolvePath(""); got != "/etc/internradar.yaml" {
		t.Errorf("env: got %q", got)
	}

	t.Setenv("INTERNRADAR_CONFIG", "")
	t.Chdir(t.TempDir())
	if got := ResolvePath(""); got != "" {
		t.Errorf("no file: got %q, want empty", got)
	}
	if err := os.WriteFile("config.yaml", []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := ResolvePath(""); got != "config.yaml" {
		t.Errorf("local file: got %q", got)
	}
}
