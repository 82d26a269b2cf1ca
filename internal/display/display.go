// Package display builds the menu representation of pending tasks and
// defines the surface contract the daemon publishes snapshots through.
package display

import (
	"sync"

	"nudge/internal/tasks"
	"nudge/internal/textutil"
)

// PlaceholderLabel is shown when there are no pending tasks. Entries carrying
// it are not selectable.
const PlaceholderLabel = "No pending tasks"

// Entry is one selectable menu line. TaskID is captured by value when the
// entry is built so a later selection always refers to the task that was
// visible, not whatever occupies that menu slot by the time the click lands.
type Entry struct {
	Label  string
	TaskID int64
}

// Selectable reports whether the entry refers to a real task.
func (e Entry) Selectable() bool {
	return e.TaskID != 0
}

// BuildEntries converts pending tasks into menu entries. Labels are truncated
// to labelWidth runes; at most limit entries are produced (limit <= 0 means
// unlimited). An empty task list yields a single placeholder entry.
func BuildEntries(pending []*tasks.Task, limit, labelWidth int) []Entry {
	if len(pending) == 0 {
		return []Entry{{Label: PlaceholderLabel}}
	}
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}

	entries := make([]Entry, 0, len(pending))
	for _, task := range pending {
		entries = append(entries, Entry{
			Label:  textutil.TruncateLabel(task.Content, labelWidth),
			TaskID: task.ID,
		})
	}
	return entries
}

// Surface receives menu snapshots. ReplaceEntries swaps the whole menu in
// one call; implementations must not merge with previous state.
type Surface interface {
	ReplaceEntries(entries []Entry)
}

// Snapshot is an in-memory Surface. The daemon writes refreshed menus into
// it and the IPC layer reads them back out for rendering elsewhere.
type Snapshot struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewSnapshot returns an empty snapshot surface.
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// ReplaceEntries atomically replaces the current menu.
func (s *Snapshot) ReplaceEntries(entries []Entry) {
	copied := make([]Entry, len(entries))
	copy(copied, entries)
	s.mu.Lock()
	s.entries = copied
	s.mu.Unlock()
}

// Entries returns a copy of the current menu.
func (s *Snapshot) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make([]Entry, len(s.entries))
	copy(copied, s.entries)
	return copied
}
