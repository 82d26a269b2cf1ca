package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Validation failure is the
// only error class allowed to abort daemon start.
func (c *Config) Validate() error {
	if err := c.validateDaemon(); err != nil {
		return err
	}
	if err := c.validateDialog(); err != nil {
		return err
	}
	if err := c.validateThrottle(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateQuickChat(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDaemon() error {
	return ensurePositiveMap(map[string]int{
		"daemon.menu_refresh_interval":   c.Daemon.MenuRefreshInterval,
		"daemon.check_interval":          c.Daemon.CheckInterval,
		"daemon.upcoming_window_minutes": c.Daemon.UpcomingWindowMinutes,
		"daemon.menu_limit":              c.Daemon.MenuLimit,
		"daemon.menu_label_width":        c.Daemon.MenuLabelWidth,
	})
}

func (c *Config) validateDialog() error {
	return ensurePositiveMap(map[string]int{
		"dialog.timeout":          c.Dialog.Timeout,
		"dialog.postpone_minutes": c.Dialog.PostponeMinutes,
	})
}

func (c *Config) validateThrottle() error {
	return ensurePositiveMap(map[string]int{
		"throttle.high_max_count":          c.Throttle.HighMaxCount,
		"throttle.high_interval_minutes":   c.Throttle.HighIntervalMinutes,
		"throttle.medium_max_count":        c.Throttle.MediumMaxCount,
		"throttle.medium_interval_minutes": c.Throttle.MediumIntervalMinutes,
	})
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateQuickChat() error {
	if c.QuickChat.Enabled && strings.TrimSpace(c.QuickChat.Command) == "" {
		return errors.New("quick_chat.command must be set when quick_chat.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
