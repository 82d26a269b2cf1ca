package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"nudge/internal/config"
	"nudge/internal/display"
	"nudge/internal/logging"
	"nudge/internal/notifications"
	"nudge/internal/reminder"
	"nudge/internal/tasks"
)

// Engine is the reminder engine surface the daemon drives.
type Engine interface {
	RunCycle(ctx context.Context, now time.Time) (reminder.CycleResult, error)
	HandleTask(ctx context.Context, id int64) error
}

// Daemon owns the periodic loops and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	store    *tasks.Store
	engine   Engine
	surface  *display.Snapshot
	notifier notifications.Service
	logger   *slog.Logger

	guard          guard
	refreshWanted  atomic.Bool
	lockPath       string
	lock           *flock.Flock
	running        atomic.Bool
	lastCycleMu    sync.Mutex
	lastCycle      *reminder.CycleResult
	lastCycleError string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Status represents daemon runtime information.
type Status struct {
	Running        bool
	PID            int
	DBPath         string
	LockPath       string
	SocketPath     string
	TaskStats      tasks.Stats
	LastCycle      *reminder.CycleResult
	LastCycleError string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *tasks.Store, engine Engine, surface *display.Snapshot, notifier notifications.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || engine == nil {
		return nil, errors.New("daemon requires config, store, and engine")
	}
	if surface == nil {
		surface = display.NewSnapshot()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		store:    store,
		engine:   engine,
		surface:  surface,
		notifier: notifier,
		logger:   logger.With(logging.String(logging.FieldComponent, "daemon")),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Surface exposes the menu snapshot for IPC rendering.
func (d *Daemon) Surface() *display.Snapshot {
	return d.surface
}

// Start acquires the instance lock and launches the refresh and check loops.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another nudge daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.running.Store(true)

	// Populate the menu before the first tick so clients never see an
	// empty surface on a fresh start.
	if !d.RefreshDisplay(d.ctx) {
		d.logger.Warn("initial display refresh skipped")
	}

	d.wg.Add(2)
	go d.refreshLoop()
	go d.checkLoop()

	stats, err := d.store.Stats(d.ctx)
	if err != nil {
		d.logger.Warn("task stats unavailable at start", logging.Error(err))
	} else if err := d.notifier.NotifyDaemonStarted(d.ctx, stats.Pending); err != nil {
		d.logger.Warn("start push failed", logging.Error(err))
	}

	d.logger.Info("nudge daemon started",
		logging.String("lock", d.lockPath),
		logging.Int("refresh_interval_seconds", d.cfg.Daemon.MenuRefreshInterval),
		logging.Int("check_interval_seconds", d.cfg.Daemon.CheckInterval))
	return nil
}

// Stop cancels the loops and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()

	if err := d.notifier.NotifyDaemonStopped(context.Background()); err != nil {
		d.logger.Warn("stop push failed", logging.Error(err))
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("nudge daemon stopped")
}

// Close stops the daemon and closes the store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether the loops are active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

func (d *Daemon) refreshLoop() {
	defer d.wg.Done()
	interval := time.Duration(d.cfg.Daemon.MenuRefreshInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.RefreshDisplay(d.ctx)
		}
	}
}

func (d *Daemon) checkLoop() {
	defer d.wg.Done()
	interval := time.Duration(d.cfg.Daemon.CheckInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.CheckCycle(d.ctx)
		}
	}
}

// RefreshDisplay rebuilds the menu snapshot if the guard is free. It returns
// false without blocking when a check cycle or menu interaction is in
// flight; the stale menu stays up until the next tick.
func (d *Daemon) RefreshDisplay(ctx context.Context) bool {
	if !d.guard.tryAcquire() {
		d.logger.Debug("display refresh skipped, guard held")
		return false
	}
	defer d.guard.release()

	d.refreshLocked(ctx)
	return true
}

// refreshLocked rebuilds the menu. Callers must hold the guard.
func (d *Daemon) refreshLocked(ctx context.Context) {
	pending, err := d.store.Pending(ctx, d.cfg.Daemon.MenuLimit)
	if err != nil {
		d.logger.Error("menu refresh failed", logging.Error(err))
		return
	}
	entries := display.BuildEntries(pending, d.cfg.Daemon.MenuLimit, d.cfg.Daemon.MenuLabelWidth)
	d.surface.ReplaceEntries(entries)
	d.logger.Debug("display refreshed", logging.Int("entries", len(entries)))
}

// CheckCycle runs one reminder cycle under the guard, blocking until the
// guard is free. When the engine flagged the menu as stale (a completion
// changed the pending set), it is rebuilt while the guard is still held;
// cycles that only bump notification state leave the snapshot alone.
func (d *Daemon) CheckCycle(ctx context.Context) (reminder.CycleResult, error) {
	d.guard.acquire()
	defer d.guard.release()

	result, err := d.engine.RunCycle(ctx, time.Now())
	d.recordCycle(result, err)
	if err != nil {
		d.logger.Error("check cycle failed", logging.Error(err))
		if pushErr := d.notifier.NotifyError(ctx, err, "check cycle"); pushErr != nil {
			d.logger.Warn("error push failed", logging.Error(pushErr))
		}
		return result, err
	}

	if d.refreshWanted.Swap(false) {
		d.refreshLocked(ctx)
	}
	return result, nil
}

// MenuSelect runs the reminder flow for one task because the user clicked
// its menu entry. It takes the guard like a check cycle does: the explicit
// interaction is worth waiting for.
func (d *Daemon) MenuSelect(ctx context.Context, id int64) error {
	d.guard.acquire()
	defer d.guard.release()

	err := d.engine.HandleTask(ctx, id)
	d.refreshWanted.Store(false)
	d.refreshLocked(ctx)
	return err
}

// RequestRefresh marks the menu as stale; CheckCycle consumes the flag and
// rebuilds before releasing the guard. The reminder engine calls this from
// inside a guarded cycle, so it must never take the guard itself.
func (d *Daemon) RequestRefresh() {
	d.refreshWanted.Store(true)
}

// Status reports runtime information for the CLI.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:    d.running.Load(),
		PID:        os.Getpid(),
		DBPath:     d.cfg.DatabasePath(),
		LockPath:   d.lockPath,
		SocketPath: d.cfg.SocketPath(),
	}
	if stats, err := d.store.Stats(ctx); err == nil {
		status.TaskStats = stats
	}
	d.lastCycleMu.Lock()
	status.LastCycle = d.lastCycle
	status.LastCycleError = d.lastCycleError
	d.lastCycleMu.Unlock()
	return status
}

// TaskStore exposes the store for IPC task operations.
func (d *Daemon) TaskStore() *tasks.Store {
	return d.store
}

// TestNotification pushes a test message through the notifier.
func (d *Daemon) TestNotification(ctx context.Context) error {
	return d.notifier.TestNotification(ctx)
}

func (d *Daemon) recordCycle(result reminder.CycleResult, err error) {
	d.lastCycleMu.Lock()
	defer d.lastCycleMu.Unlock()
	d.lastCycle = &result
	if err != nil {
		d.lastCycleError = err.Error()
	} else {
		d.lastCycleError = ""
	}
}
