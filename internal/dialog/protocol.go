package dialog

import (
	"context"
	"log/slog"
	"time"

	"nudge/internal/logging"
	"nudge/internal/tasks"
	"nudge/internal/textutil"
)

// Protocol turns tasks into prompts and raw presenter replies into outcomes.
type Protocol struct {
	presenter Presenter
	timeout   time.Duration
	logger    *slog.Logger
}

// NewProtocol builds a protocol around a presenter. The timeout bounds each
// individual prompt.
func NewProtocol(presenter Presenter, timeout time.Duration, logger *slog.Logger) *Protocol {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Protocol{presenter: presenter, timeout: timeout, logger: logger}
}

// Present shows the prompt kind for a task and returns the interpreted
// outcome. Presenter failures, give-up timeouts, and unrecognized replies
// all resolve to the kind's default outcome; the error is logged, never
// returned, so a broken scripting surface degrades to "do the safe thing".
func (p *Protocol) Present(ctx context.Context, kind Kind, task *tasks.Task) Outcome {
	labels, def := buttons(kind)
	req := Request{
		Title:         promptTitle(kind),
		Message:       promptMessage(kind, task),
		Buttons:       labels,
		DefaultButton: def,
		Timeout:       p.timeout,
	}

	raw, err := p.presenter.Present(ctx, req)
	fallback := defaultOutcome(kind)
	if err != nil {
		p.logger.Warn("dialog presentation failed, using default outcome",
			logging.String("kind", string(kind)),
			logging.Int64(logging.FieldTaskID, task.ID),
			logging.String("outcome", string(fallback)),
			logging.Error(err))
		return fallback
	}
	if raw == "" {
		p.logger.Debug("dialog timed out without a choice",
			logging.String("kind", string(kind)),
			logging.Int64(logging.FieldTaskID, task.ID),
			logging.String("outcome", string(fallback)))
		return fallback
	}

	outcome, ok := outcomeForLabel(kind, raw)
	if !ok {
		p.logger.Warn("dialog returned unknown button, using default outcome",
			logging.String("kind", string(kind)),
			logging.String("button", raw),
			logging.Int64(logging.FieldTaskID, task.ID))
		return fallback
	}
	return outcome
}

func promptTitle(kind Kind) string {
	if kind == KindCompletionConfirm {
		return "Confirm Completion"
	}
	return "Task Reminder"
}

func promptMessage(kind Kind, task *tasks.Task) string {
	content := textutil.TruncateLabel(task.Content, 200)
	if kind == KindCompletionConfirm {
		return "Mark this task as done?\n\n" + content
	}
	return content
}
