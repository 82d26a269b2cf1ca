// Package reminder runs the check cycle: it decides which due tasks get
// surfaced, presents the dialog protocol for each, and applies the chosen
// outcome back to the store.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"nudge/internal/config"
	"nudge/internal/dialog"
	"nudge/internal/logging"
	"nudge/internal/notifications"
	"nudge/internal/notify"
	"nudge/internal/tasks"
)

// Store is the slice of the task store the engine needs.
type Store interface {
	Upcoming(ctx context.Context, now time.Time, window time.Duration) ([]*tasks.Task, error)
	GetByID(ctx context.Context, id int64) (*tasks.Task, error)
	SetStatus(ctx context.Context, id int64, status tasks.Status) error
	SetDueTime(ctx context.Context, id int64, due time.Time) error
	BumpNotification(ctx context.Context, id int64) error
}

// Prompter presents a dialog kind for a task and returns the interpreted
// outcome.
type Prompter interface {
	Present(ctx context.Context, kind dialog.Kind, task *tasks.Task) dialog.Outcome
}

// Gate decides whether a due task may be surfaced.
type Gate interface {
	ShouldNotify(task *tasks.Task, now time.Time) notify.Decision
}

// CycleResult summarizes one check cycle for logging and IPC status.
type CycleResult struct {
	CycleID   string
	Evaluated int
	Notified  int
	Completed int
	Postponed int
	Errors    int
}

// Engine drives reminder cycles against the store.
type Engine struct {
	store          Store
	prompter       Prompter
	gate           Gate
	notifier       notifications.Service
	requestRefresh func()
	window         time.Duration
	postpone       time.Duration
	logger         *slog.Logger
}

// New constructs an engine. requestRefresh is invoked after a task completes
// so the owner can schedule a menu rebuild; it may be nil.
func New(cfg *config.Config, store Store, prompter Prompter, gate Gate, notifier notifications.Service, requestRefresh func(), logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Engine{
		store:          store,
		prompter:       prompter,
		gate:           gate,
		notifier:       notifier,
		requestRefresh: requestRefresh,
		window:         time.Duration(cfg.Daemon.UpcomingWindowMinutes) * time.Minute,
		postpone:       time.Duration(cfg.Dialog.PostponeMinutes) * time.Minute,
		logger:         logger.With(logging.String(logging.FieldComponent, "reminder")),
	}
}

// RunCycle evaluates every upcoming task once. Failures on one task are
// logged and do not stop the rest of the cycle; only the initial store query
// can fail the cycle as a whole.
func (e *Engine) RunCycle(ctx context.Context, now time.Time) (CycleResult, error) {
	result := CycleResult{CycleID: uuid.NewString()}
	log := e.logger.With(logging.String(logging.FieldCycleID, result.CycleID))

	upcoming, err := e.store.Upcoming(ctx, now, e.window)
	if err != nil {
		return result, fmt.Errorf("fetch upcoming tasks: %w", err)
	}

	for _, task := range upcoming {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		if task.DueTimeMalformed() {
			log.Warn("skipping task with unreadable due time",
				logging.Int64(logging.FieldTaskID, task.ID),
				logging.String("due_time_raw", task.DueTimeRaw))
			continue
		}
		result.Evaluated++

		decision := e.gate.ShouldNotify(task, now)
		if !decision.Allow {
			log.Debug("task throttled",
				logging.Int64(logging.FieldTaskID, task.ID),
				logging.String("tier", string(decision.Tier)),
				logging.String("reason", decision.Reason))
			continue
		}
		result.Notified++

		outcome, err := e.handle(ctx, log, task)
		if err != nil {
			result.Errors++
			log.Error("task handling failed",
				logging.Int64(logging.FieldTaskID, task.ID),
				logging.Error(err))
			continue
		}
		switch outcome {
		case dialog.OutcomeComplete:
			result.Completed++
		case dialog.OutcomePostpone:
			result.Postponed++
		}
	}

	log.Info("check cycle complete",
		logging.Int("evaluated", result.Evaluated),
		logging.Int("notified", result.Notified),
		logging.Int("completed", result.Completed),
		logging.Int("postponed", result.Postponed),
		logging.Int("errors", result.Errors))
	return result, nil
}

// HandleTask presents the reminder flow for one task immediately, bypassing
// the throttle gate. It backs the interactive menu-select path, where the
// user has explicitly asked to see the task.
func (e *Engine) HandleTask(ctx context.Context, id int64) error {
	task, err := e.store.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load task %d: %w", id, err)
	}
	if task == nil {
		return fmt.Errorf("task %d not found", id)
	}
	if task.Status != tasks.StatusPending {
		return fmt.Errorf("task %d is already %s", id, task.Status)
	}

	_, err = e.handle(ctx, e.logger, task)
	return err
}

// handle runs the reminder dialog for a task and applies the outcome. The
// notification bump is tied to the outcome landing: a later, a successful
// postpone, or a confirmed completion. A cancelled confirm or a refused
// postpone leaves the notification state untouched.
func (e *Engine) handle(ctx context.Context, log *slog.Logger, task *tasks.Task) (dialog.Outcome, error) {
	outcome := e.prompter.Present(ctx, dialog.KindReminder, task)

	switch outcome {
	case dialog.OutcomeComplete:
		return outcome, e.complete(ctx, log, task)
	case dialog.OutcomePostpone:
		return outcome, e.postponeTask(ctx, log, task)
	default:
		if err := e.store.BumpNotification(ctx, task.ID); err != nil {
			return outcome, fmt.Errorf("record notification: %w", err)
		}
		log.Debug("task left for later", logging.Int64(logging.FieldTaskID, task.ID))
		return outcome, nil
	}
}

// complete runs the confirmation prompt and, when confirmed, marks the task
// done and asks for a display refresh.
func (e *Engine) complete(ctx context.Context, log *slog.Logger, task *tasks.Task) error {
	confirm := e.prompter.Present(ctx, dialog.KindCompletionConfirm, task)
	if confirm != dialog.OutcomeConfirm {
		log.Debug("completion cancelled", logging.Int64(logging.FieldTaskID, task.ID))
		return nil
	}

	if err := e.store.SetStatus(ctx, task.ID, tasks.StatusDone); err != nil {
		return fmt.Errorf("mark task done: %w", err)
	}
	if err := e.store.BumpNotification(ctx, task.ID); err != nil {
		return fmt.Errorf("record notification: %w", err)
	}
	log.Info("task completed",
		logging.Int64(logging.FieldTaskID, task.ID),
		logging.String(logging.FieldEventType, "task_completed"))

	if err := e.notifier.NotifyTaskCompleted(ctx, task.Content); err != nil {
		log.Warn("completion push failed", logging.Error(err))
	}
	if e.requestRefresh != nil {
		e.requestRefresh()
	}
	return nil
}

// postponeTask pushes the due time forward by the configured delta, measured
// from the task's previous due time so repeated postponements accumulate.
// The original zone offset travels with the timestamp.
func (e *Engine) postponeTask(ctx context.Context, log *slog.Logger, task *tasks.Task) error {
	if !task.HasDueTime() {
		log.Warn("cannot postpone task without a readable due time",
			logging.Int64(logging.FieldTaskID, task.ID),
			logging.String("due_time_raw", task.DueTimeRaw))
		return nil
	}

	newDue := task.DueTime.Add(e.postpone)
	if err := e.store.SetDueTime(ctx, task.ID, newDue); err != nil {
		return fmt.Errorf("postpone task: %w", err)
	}
	if err := e.store.BumpNotification(ctx, task.ID); err != nil {
		return fmt.Errorf("record notification: %w", err)
	}
	log.Info("task postponed",
		logging.Int64(logging.FieldTaskID, task.ID),
		logging.String(logging.FieldEventType, "task_postponed"),
		logging.Time("new_due_time", newDue))
	return nil
}
