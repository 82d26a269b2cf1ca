package testsupport

import (
	"context"
	"testing"
	"time"

	"nudge/internal/config"
	"nudge/internal/tasks"
)

// MustOpenStore opens a tasks.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *tasks.Store {
	t.Helper()

	store, err := tasks.Open(cfg)
	if err != nil {
		t.Fatalf("tasks.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewTask creates a pending task for tests using the provided store.
func NewTask(t testing.TB, store *tasks.Store, content string, due *time.Time, priority int) *tasks.Task {
	t.Helper()

	task, err := store.Add(context.Background(), content, due, priority)
	if err != nil {
		t.Fatalf("store.Add: %v", err)
	}
	return task
}
