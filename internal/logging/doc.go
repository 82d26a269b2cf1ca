// Package logging builds the slog loggers used across nudge and defines the
// shared attribute vocabulary. Console output renders compact
// "ts LEVEL component: msg key=value" lines; JSON output is standard slog.
package logging
