package tasks

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a task. The only legal transition is
// pending to done; done is terminal.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
)

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case StatusPending, StatusDone:
		return normalized, true
	default:
		return "", false
	}
}

// Task represents a task record persisted in SQLite.
//
// DueTime and LastNotifiedAt are parsed views of the stored timestamp text.
// When the stored text cannot be parsed the pointer is nil while the Raw
// field keeps the original value, so callers can degrade (log a warning,
// refuse postponement) instead of failing.
type Task struct {
	ID                int64
	Content           string
	Priority          int
	Status            Status
	DueTime           *time.Time
	DueTimeRaw        string
	CreatedAt         time.Time
	LastNotifiedAt    *time.Time
	LastNotifiedRaw   string
	NotificationCount int
}

// HasDueTime reports whether the task carries a parsable due time.
func (t *Task) HasDueTime() bool {
	return t != nil && t.DueTime != nil
}

// DueTimeMalformed reports whether the stored due time exists but could not
// be parsed.
func (t *Task) DueTimeMalformed() bool {
	return t != nil && t.DueTime == nil && strings.TrimSpace(t.DueTimeRaw) != ""
}

// LastNotifiedMalformed reports whether the stored last-notified timestamp
// exists but could not be parsed.
func (t *Task) LastNotifiedMalformed() bool {
	return t != nil && t.LastNotifiedAt == nil && strings.TrimSpace(t.LastNotifiedRaw) != ""
}

// Stats aggregates task counts by status.
type Stats struct {
	Total   int
	Pending int
	Done    int
}

// DatabaseHealth captures diagnostic information about the task database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TableExists      bool
	IntegrityCheck   bool
	TotalTasks       int
	Error            string
}
