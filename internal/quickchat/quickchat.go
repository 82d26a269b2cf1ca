// Package quickchat opens the user's interactive assistant in a new
// terminal window. It rides the same osascript surface the dialogs use and
// is strictly best-effort: failures are logged by the caller and never
// affect the reminder loops.
package quickchat

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"nudge/internal/config"
	"nudge/internal/textutil"
)

var commandContext = exec.CommandContext

// Launcher starts the configured chat command in a new Terminal window.
type Launcher struct {
	enabled   bool
	command   string
	osascript string
}

// NewLauncher builds a launcher from config.
func NewLauncher(cfg *config.Config) *Launcher {
	return &Launcher{
		enabled:   cfg.QuickChat.Enabled,
		command:   strings.TrimSpace(cfg.QuickChat.Command),
		osascript: cfg.OsascriptBinary(),
	}
}

// Enabled reports whether quick chat is configured.
func (l *Launcher) Enabled() bool {
	return l.enabled && l.command != ""
}

// Launch opens a terminal window running the chat command.
func (l *Launcher) Launch(ctx context.Context) error {
	if !l.Enabled() {
		return errors.New("quick chat is not enabled")
	}

	script := fmt.Sprintf(
		`tell application "Terminal"
	activate
	do script "%s"
end tell`,
		textutil.EscapeScriptString(l.command),
	)

	runCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	cmd := commandContext(runCtx, l.osascript, "-e", script) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		detail := strings.TrimSpace(string(output))
		if detail != "" {
			return fmt.Errorf("launch quick chat: %w: %s", err, detail)
		}
		return fmt.Errorf("launch quick chat: %w", err)
	}
	return nil
}
