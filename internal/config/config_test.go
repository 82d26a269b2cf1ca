package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Throttle.HighMaxCount != 5 || cfg.Throttle.HighIntervalMinutes != 15 {
		t.Fatalf("unexpected high tier defaults: %+v", cfg.Throttle)
	}
	if cfg.Throttle.MediumMaxCount != 3 || cfg.Throttle.MediumIntervalMinutes != 30 {
		t.Fatalf("unexpected medium tier defaults: %+v", cfg.Throttle)
	}
	if cfg.Dialog.Timeout != 30 || cfg.Dialog.PostponeMinutes != 30 {
		t.Fatalf("unexpected dialog defaults: %+v", cfg.Dialog)
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[daemon]
check_interval = 15

[dialog]
postpone_minutes = 10
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s to be found, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Daemon.CheckInterval != 15 {
		t.Fatalf("expected check_interval override, got %d", cfg.Daemon.CheckInterval)
	}
	if cfg.Dialog.PostponeMinutes != 10 {
		t.Fatalf("expected postpone override, got %d", cfg.Dialog.PostponeMinutes)
	}
	// Untouched sections keep defaults.
	if cfg.Daemon.MenuRefreshInterval != 60 {
		t.Fatalf("expected default refresh interval, got %d", cfg.Daemon.MenuRefreshInterval)
	}
	if cfg.DatabasePath() != filepath.Join(dir, "data", "tasks.db") {
		t.Fatalf("unexpected database path %s", cfg.DatabasePath())
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	cfg, _, exists, err := Load(missing)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing config")
	}
	if cfg.Daemon.CheckInterval != 60 {
		t.Fatalf("expected defaults, got check_interval=%d", cfg.Daemon.CheckInterval)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative check interval", func(c *Config) { c.Daemon.CheckInterval = -1 }, "daemon.check_interval"},
		{"zero dialog timeout", func(c *Config) { c.Dialog.Timeout = 0 }, "dialog.timeout"},
		{"zero postpone", func(c *Config) { c.Dialog.PostponeMinutes = 0 }, "dialog.postpone_minutes"},
		{"zero high max", func(c *Config) { c.Throttle.HighMaxCount = 0 }, "throttle.high_max_count"},
		{"zero medium interval", func(c *Config) { c.Throttle.MediumIntervalMinutes = 0 }, "throttle.medium_interval_minutes"},
		{"bad log format", func(c *Config) { c.Logging.Format = "yaml" }, "logging.format"},
		{"quick chat without command", func(c *Config) { c.QuickChat.Enabled = true }, "quick_chat.command"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[throttle]") {
		t.Fatal("sample config missing throttle section")
	}
	// The sample must itself parse and validate.
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}
