package daemon_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"nudge/internal/daemon"
	"nudge/internal/display"
	"nudge/internal/reminder"
	"nudge/internal/testsupport"
)

type blockingEngine struct {
	entered  chan struct{}
	release  chan struct{}
	cycleErr error
	handled  []int64
	onCycle  func()
}

func newBlockingEngine() *blockingEngine {
	return &blockingEngine{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (e *blockingEngine) RunCycle(ctx context.Context, _ time.Time) (reminder.CycleResult, error) {
	select {
	case e.entered <- struct{}{}:
	default:
	}
	select {
	case <-e.release:
	case <-ctx.Done():
		return reminder.CycleResult{}, ctx.Err()
	}
	if e.onCycle != nil {
		e.onCycle()
	}
	return reminder.CycleResult{CycleID: "test"}, e.cycleErr
}

func (e *blockingEngine) HandleTask(_ context.Context, id int64) error {
	e.handled = append(e.handled, id)
	return nil
}

type idleEngine struct{}

func (idleEngine) RunCycle(context.Context, time.Time) (reminder.CycleResult, error) {
	return reminder.CycleResult{}, nil
}

func (idleEngine) HandleTask(context.Context, int64) error { return nil }

func TestRefreshNeverBlocksOnCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	engine := newBlockingEngine()

	d, err := daemon.New(cfg, store, engine, display.NewSnapshot(), nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx := context.Background()
	cycleDone := make(chan struct{})
	go func() {
		defer close(cycleDone)
		_, _ = d.CheckCycle(ctx)
	}()

	select {
	case <-engine.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("check cycle never started")
	}

	// The check holds the guard; a refresh tick must skip, not wait.
	start := time.Now()
	if d.RefreshDisplay(ctx) {
		t.Fatal("refresh should have been skipped while the guard is held")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("refresh skip took %s, expected an immediate return", elapsed)
	}

	close(engine.release)
	select {
	case <-cycleDone:
	case <-time.After(2 * time.Second):
		t.Fatal("check cycle never finished")
	}

	if !d.RefreshDisplay(ctx) {
		t.Fatal("refresh should succeed once the guard is free")
	}
}

func TestCheckCycleRefreshesMenuWhenRequested(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.NewTask(t, store, "refresh me", nil, 3)

	engine := newBlockingEngine()
	close(engine.release)

	d, err := daemon.New(cfg, store, engine, display.NewSnapshot(), nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	engine.onCycle = d.RequestRefresh

	if _, err := d.CheckCycle(context.Background()); err != nil {
		t.Fatalf("CheckCycle: %v", err)
	}
	entries := d.Surface().Entries()
	if len(entries) != 1 || entries[0].Label != "refresh me" {
		t.Fatalf("expected menu rebuilt after cycle, got %+v", entries)
	}
}

func TestCheckCycleWithoutRequestKeepsSnapshot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.NewTask(t, store, "quiet cycle", nil, 3)

	engine := newBlockingEngine()
	close(engine.release)

	d, err := daemon.New(cfg, store, engine, display.NewSnapshot(), nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	if _, err := d.CheckCycle(context.Background()); err != nil {
		t.Fatalf("CheckCycle: %v", err)
	}
	if entries := d.Surface().Entries(); len(entries) != 0 {
		t.Fatalf("cycle without a refresh request must not touch the menu, got %+v", entries)
	}

	// A regular refresh tick still picks the task up.
	if !d.RefreshDisplay(context.Background()) {
		t.Fatal("refresh should succeed with the guard free")
	}
	if entries := d.Surface().Entries(); len(entries) != 1 {
		t.Fatalf("expected menu populated by refresh, got %+v", entries)
	}
}

func TestCheckCycleReportsEngineError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	engine := newBlockingEngine()
	engine.cycleErr = errors.New("store exploded")
	close(engine.release)

	d, err := daemon.New(cfg, store, engine, display.NewSnapshot(), nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	if _, err := d.CheckCycle(context.Background()); err == nil {
		t.Fatal("expected cycle error to propagate")
	}
	status := d.Status(context.Background())
	if status.LastCycleError == "" {
		t.Fatal("expected last cycle error recorded in status")
	}
}

func TestMenuSelectHandlesTaskAndRefreshes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	task := testsupport.NewTask(t, store, "click me", nil, 3)

	engine := newBlockingEngine()
	d, err := daemon.New(cfg, store, engine, display.NewSnapshot(), nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	if err := d.MenuSelect(context.Background(), task.ID); err != nil {
		t.Fatalf("MenuSelect: %v", err)
	}
	if len(engine.handled) != 1 || engine.handled[0] != task.ID {
		t.Fatalf("expected task handled, got %v", engine.handled)
	}
	if len(d.Surface().Entries()) == 0 {
		t.Fatal("expected menu rebuilt after selection")
	}
}

func TestSingleInstanceLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	first, err := daemon.New(cfg, store, idleEngine{}, nil, nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	defer first.Stop()

	secondStore := testsupport.MustOpenStore(t, cfg)
	second, err := daemon.New(cfg, secondStore, idleEngine{}, nil, nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second instance should fail to acquire the lock")
	}

	first.Stop()
	if err := second.Start(context.Background()); err != nil {
		t.Fatalf("lock should be free after first stop: %v", err)
	}
	second.Stop()
}
