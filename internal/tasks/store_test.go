package tasks_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"nudge/internal/tasks"
	"nudge/internal/testsupport"
)

func TestAddAndGet(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	due := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	task, err := store.Add(ctx, "write weekly report", &due, 4)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if task.ID == 0 {
		t.Fatal("expected non-zero id")
	}
	if task.Status != tasks.StatusPending {
		t.Fatalf("expected pending status, got %s", task.Status)
	}
	if task.NotificationCount != 0 {
		t.Fatalf("expected zero notification count, got %d", task.NotificationCount)
	}
	if !task.HasDueTime() || !task.DueTime.Equal(due) {
		t.Fatalf("due time mismatch: got %v want %v", task.DueTime, due)
	}

	fetched, err := store.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched == nil || fetched.Content != "write weekly report" {
		t.Fatalf("unexpected fetch result: %+v", fetched)
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := store.Add(ctx, "   ", nil, 3); err == nil {
		t.Fatal("expected error for empty content")
	}
	if _, err := store.Add(ctx, "task", nil, 0); err == nil {
		t.Fatal("expected error for priority below range")
	}
	if _, err := store.Add(ctx, "task", nil, 6); err == nil {
		t.Fatal("expected error for priority above range")
	}
}

func TestGetByIDMissing(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	task, err := store.GetByID(context.Background(), 9999)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if task != nil {
		t.Fatalf("expected nil for missing task, got %+v", task)
	}
}

func TestPendingOrderingAndLimit(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	soon := time.Now().Add(time.Hour)
	later := time.Now().Add(3 * time.Hour)
	low := testsupport.NewTask(t, store, "low no due", nil, 2)
	highLater := testsupport.NewTask(t, store, "high later", &later, 5)
	highSoon := testsupport.NewTask(t, store, "high soon", &soon, 5)
	medium := testsupport.NewTask(t, store, "medium", &soon, 3)

	done := testsupport.NewTask(t, store, "finished", nil, 5)
	if err := store.SetStatus(ctx, done.ID, tasks.StatusDone); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	pending, err := store.Pending(ctx, 0)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	wantOrder := []int64{highSoon.ID, highLater.ID, medium.ID, low.ID}
	if len(pending) != len(wantOrder) {
		t.Fatalf("expected %d pending tasks, got %d", len(wantOrder), len(pending))
	}
	for i, want := range wantOrder {
		if pending[i].ID != want {
			t.Fatalf("position %d: got task %d want %d", i, pending[i].ID, want)
		}
	}

	limited, err := store.Pending(ctx, 2)
	if err != nil {
		t.Fatalf("Pending limited: %v", err)
	}
	if len(limited) != 2 || limited[0].ID != highSoon.ID {
		t.Fatalf("unexpected limited result: %+v", limited)
	}
}

func TestUpcomingWindow(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	now := time.Now()

	overdue := now.Add(-30 * time.Minute)
	inside := now.Add(30 * time.Minute)
	outside := now.Add(2 * time.Hour)

	overdueTask := testsupport.NewTask(t, store, "overdue", &overdue, 3)
	insideTask := testsupport.NewTask(t, store, "inside window", &inside, 3)
	testsupport.NewTask(t, store, "outside window", &outside, 3)
	testsupport.NewTask(t, store, "no due", nil, 3)

	doneDue := now.Add(10 * time.Minute)
	doneTask := testsupport.NewTask(t, store, "done already", &doneDue, 3)
	if err := store.SetStatus(ctx, doneTask.ID, tasks.StatusDone); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	upcoming, err := store.Upcoming(ctx, now, time.Hour)
	if err != nil {
		t.Fatalf("Upcoming: %v", err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("expected 2 upcoming tasks, got %d", len(upcoming))
	}
	if upcoming[0].ID != overdueTask.ID || upcoming[1].ID != insideTask.ID {
		t.Fatalf("unexpected order: %d, %d", upcoming[0].ID, upcoming[1].ID)
	}
}

func TestUpcomingKeepsMalformedDueTimes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	good := time.Now().Add(10 * time.Minute)
	goodTask := testsupport.NewTask(t, store, "good", &good, 3)

	// Corrupt a row directly the way an external writer could.
	db, err := sql.Open("sqlite", cfg.DatabasePath())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(
		`INSERT INTO tasks (content, due_time, priority, status, created_at, notification_count)
         VALUES ('broken', 'not-a-timestamp', 3, 'pending', ?, 0)`,
		time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		t.Fatalf("insert malformed row: %v", err)
	}

	upcoming, err := store.Upcoming(ctx, time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("Upcoming: %v", err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(upcoming))
	}
	if upcoming[0].ID != goodTask.ID {
		t.Fatalf("expected parsable task first, got %d", upcoming[0].ID)
	}
	if !upcoming[1].DueTimeMalformed() {
		t.Fatalf("expected malformed due time flagged: %+v", upcoming[1])
	}
	if upcoming[1].DueTimeRaw != "not-a-timestamp" {
		t.Fatalf("expected raw value preserved, got %q", upcoming[1].DueTimeRaw)
	}
}

func TestSetDueTimePreservesZone(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	task := testsupport.NewTask(t, store, "zoned", nil, 3)

	zone := time.FixedZone("UTC+8", 8*60*60)
	due := time.Date(2026, 3, 14, 9, 0, 0, 0, zone)
	if err := store.SetDueTime(ctx, task.ID, due); err != nil {
		t.Fatalf("SetDueTime: %v", err)
	}

	fetched, err := store.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !fetched.HasDueTime() {
		t.Fatal("expected due time after update")
	}
	if !fetched.DueTime.Equal(due) {
		t.Fatalf("due time mismatch: got %v want %v", fetched.DueTime, due)
	}
	_, offset := fetched.DueTime.Zone()
	if offset != 8*60*60 {
		t.Fatalf("expected +08:00 offset preserved, got %d", offset)
	}
}

func TestSetStatusTransitions(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	task := testsupport.NewTask(t, store, "transition", nil, 3)
	if err := store.SetStatus(ctx, task.ID, tasks.StatusDone); err != nil {
		t.Fatalf("pending -> done should succeed: %v", err)
	}

	err := store.SetStatus(ctx, task.ID, tasks.StatusDone)
	if !errors.Is(err, tasks.ErrInvalidTransition) {
		t.Fatalf("done -> done should be invalid, got %v", err)
	}

	err = store.SetStatus(ctx, task.ID, tasks.StatusPending)
	if !errors.Is(err, tasks.ErrInvalidTransition) {
		t.Fatalf("reopening a done task should be invalid, got %v", err)
	}

	if err := store.SetStatus(ctx, 9999, tasks.StatusDone); err == nil {
		t.Fatal("expected error for missing task")
	}
}

func TestBumpNotification(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	task := testsupport.NewTask(t, store, "bump", nil, 3)
	before := time.Now().Add(-time.Second)

	if err := store.BumpNotification(ctx, task.ID); err != nil {
		t.Fatalf("BumpNotification: %v", err)
	}
	if err := store.BumpNotification(ctx, task.ID); err != nil {
		t.Fatalf("BumpNotification again: %v", err)
	}

	fetched, err := store.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.NotificationCount != 2 {
		t.Fatalf("expected count 2, got %d", fetched.NotificationCount)
	}
	if fetched.LastNotifiedAt == nil || fetched.LastNotifiedAt.Before(before) {
		t.Fatalf("expected fresh last_notified_at, got %v", fetched.LastNotifiedAt)
	}
}

func TestRemove(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	task := testsupport.NewTask(t, store, "remove me", nil, 3)
	removed, err := store.Remove(ctx, task.ID)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !removed {
		t.Fatal("expected removal to report true")
	}

	removed, err = store.Remove(ctx, task.ID)
	if err != nil {
		t.Fatalf("Remove again: %v", err)
	}
	if removed {
		t.Fatal("expected second removal to report false")
	}
}

func TestStats(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	testsupport.NewTask(t, store, "a", nil, 3)
	testsupport.NewTask(t, store, "b", nil, 3)
	done := testsupport.NewTask(t, store, "c", nil, 3)
	if err := store.SetStatus(ctx, done.ID, tasks.StatusDone); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 || stats.Pending != 2 || stats.Done != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestCheckHealth(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	testsupport.NewTask(t, store, "healthy", nil, 3)

	health, err := store.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable || !health.TableExists {
		t.Fatalf("unexpected health: %+v", health)
	}
	if !health.IntegrityCheck {
		t.Fatal("expected integrity check to pass")
	}
	if health.TotalTasks != 1 {
		t.Fatalf("expected 1 task, got %d", health.TotalTasks)
	}
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		input string
		want  tasks.Status
		ok    bool
	}{
		{"pending", tasks.StatusPending, true},
		{" DONE ", tasks.StatusDone, true},
		{"archived", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := tasks.ParseStatus(tc.input)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseStatus(%q) = %q, %v; want %q, %v", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}
