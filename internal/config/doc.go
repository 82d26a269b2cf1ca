// Package config loads, validates, and defaults the TOML configuration used
// by the nudge daemon and CLI.
package config
