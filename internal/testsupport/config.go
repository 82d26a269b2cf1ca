// Package testsupport provides helpers shared across package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"nudge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config failed validation: %v", err)
	}
	return &cfg
}

// WithPostponeMinutes overrides the dialog postpone delta on the test config.
func WithPostponeMinutes(minutes int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Dialog.PostponeMinutes = minutes
	}
}

// WithThrottle overrides the high and medium tier throttle settings.
func WithThrottle(highMax, highInterval, mediumMax, mediumInterval int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Throttle.HighMaxCount = highMax
		cfg.Throttle.HighIntervalMinutes = highInterval
		cfg.Throttle.MediumMaxCount = mediumMax
		cfg.Throttle.MediumIntervalMinutes = mediumInterval
	}
}
