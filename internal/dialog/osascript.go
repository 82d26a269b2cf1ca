package dialog

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"nudge/internal/textutil"
)

var commandContext = exec.CommandContext

// Presenter shows a modal prompt and returns the raw button label the user
// chose. An empty label with a nil error means the prompt gave up without a
// choice.
type Presenter interface {
	Present(ctx context.Context, req Request) (string, error)
}

// OSAScript presents prompts through the macOS osascript binary.
type OSAScript struct {
	binary string
}

// NewOSAScript constructs a presenter shelling out to the given osascript
// binary. An empty binary falls back to "osascript" on PATH.
func NewOSAScript(binary string) *OSAScript {
	if strings.TrimSpace(binary) == "" {
		binary = "osascript"
	}
	return &OSAScript{binary: binary}
}

// Present runs a display dialog script and parses the chosen button out of
// the osascript reply. The script carries its own give-up timeout; the
// subprocess context gets a small grace period on top so a hung osascript
// cannot wedge the caller.
func (p *OSAScript) Present(ctx context.Context, req Request) (string, error) {
	if len(req.Buttons) == 0 {
		return "", fmt.Errorf("dialog request has no buttons")
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout+5*time.Second)
	defer cancel()

	cmd := commandContext(runCtx, p.binary, "-e", buildScript(req, timeout)) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("run %s: %w: %s", p.binary, err, detail)
		}
		return "", fmt.Errorf("run %s: %w", p.binary, err)
	}

	return parseButtonReturned(stdout.String()), nil
}

func buildScript(req Request, timeout time.Duration) string {
	quoted := make([]string, 0, len(req.Buttons))
	for _, label := range req.Buttons {
		quoted = append(quoted, `"`+textutil.EscapeScriptString(label)+`"`)
	}

	var script strings.Builder
	script.WriteString(`display dialog "`)
	script.WriteString(textutil.EscapeScriptString(req.Message))
	script.WriteString(`" with title "`)
	script.WriteString(textutil.EscapeScriptString(req.Title))
	script.WriteString(`" buttons {`)
	script.WriteString(strings.Join(quoted, ", "))
	script.WriteString(`} default button "`)
	script.WriteString(textutil.EscapeScriptString(req.DefaultButton))
	script.WriteString(`" giving up after `)
	fmt.Fprintf(&script, "%d", int(timeout.Seconds()))
	return script.String()
}

// parseButtonReturned extracts the label from osascript output such as
// "button returned:Postpone" or "button returned:, gave up:true". A give-up
// yields the empty string.
func parseButtonReturned(output string) string {
	const marker = "button returned:"
	idx := strings.Index(output, marker)
	if idx < 0 {
		return ""
	}
	rest := output[idx+len(marker):]
	if comma := strings.Index(rest, ","); comma >= 0 {
		rest = rest[:comma]
	}
	return strings.TrimSpace(rest)
}
