package ipc

import "time"

// TaskDTO is the wire form of a task.
type TaskDTO struct {
	ID                int64  `json:"id"`
	Content           string `json:"content"`
	Priority          int    `json:"priority"`
	Status            string `json:"status"`
	DueTime           string `json:"due_time,omitempty"`
	CreatedAt         string `json:"created_at"`
	LastNotifiedAt    string `json:"last_notified_at,omitempty"`
	NotificationCount int    `json:"notification_count"`
}

// MenuEntryDTO is one rendered menu line.
type MenuEntryDTO struct {
	Label  string `json:"label"`
	TaskID int64  `json:"task_id,omitempty"`
}

// CycleSummary mirrors the most recent check cycle result.
type CycleSummary struct {
	CycleID   string `json:"cycle_id"`
	Evaluated int    `json:"evaluated"`
	Notified  int    `json:"notified"`
	Completed int    `json:"completed"`
	Postponed int    `json:"postponed"`
	Errors    int    `json:"errors"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents daemon runtime information.
type StatusResponse struct {
	Running        bool          `json:"running"`
	PID            int           `json:"pid"`
	DBPath         string        `json:"db_path"`
	LockPath       string        `json:"lock_path"`
	SocketPath     string        `json:"socket_path"`
	TotalTasks     int           `json:"total_tasks"`
	PendingTasks   int           `json:"pending_tasks"`
	DoneTasks      int           `json:"done_tasks"`
	LastCycle      *CycleSummary `json:"last_cycle,omitempty"`
	LastCycleError string        `json:"last_cycle_error,omitempty"`
}

// StopRequest asks the daemon to shut down.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// MenuListRequest fetches the current menu snapshot.
type MenuListRequest struct{}

// MenuListResponse contains the rendered menu entries.
type MenuListResponse struct {
	Entries []MenuEntryDTO `json:"entries"`
}

// MenuSelectRequest simulates clicking a menu entry.
type MenuSelectRequest struct {
	TaskID int64 `json:"task_id"`
}

// MenuSelectResponse reports the selection outcome.
type MenuSelectResponse struct {
	Handled bool   `json:"handled"`
	Message string `json:"message,omitempty"`
}

// TaskListRequest filters the task listing by status.
type TaskListRequest struct {
	Status string `json:"status,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// TaskListResponse contains task entries.
type TaskListResponse struct {
	Tasks []TaskDTO `json:"tasks"`
}

// TaskAddRequest creates a new task.
type TaskAddRequest struct {
	Content  string `json:"content"`
	Priority int    `json:"priority"`
	DueTime  string `json:"due_time,omitempty"`
}

// TaskAddResponse returns the stored task.
type TaskAddResponse struct {
	Task TaskDTO `json:"task"`
}

// TaskDoneRequest marks a task completed.
type TaskDoneRequest struct {
	ID int64 `json:"id"`
}

// TaskDoneResponse confirms completion.
type TaskDoneResponse struct {
	Done bool `json:"done"`
}

// TaskRemoveRequest deletes a task.
type TaskRemoveRequest struct {
	ID int64 `json:"id"`
}

// TaskRemoveResponse reports whether a row was deleted.
type TaskRemoveResponse struct {
	Removed bool `json:"removed"`
}

// CheckNowRequest triggers an immediate check cycle.
type CheckNowRequest struct{}

// CheckNowResponse summarizes the cycle that ran.
type CheckNowResponse struct {
	Cycle CycleSummary `json:"cycle"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse confirms the test push was sent.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message,omitempty"`
}

// DatabaseHealthRequest fetches store diagnostics.
type DatabaseHealthRequest struct{}

// DatabaseHealthResponse carries store diagnostics.
type DatabaseHealthResponse struct {
	DBPath           string `json:"db_path"`
	DatabaseExists   bool   `json:"database_exists"`
	DatabaseReadable bool   `json:"database_readable"`
	TableExists      bool   `json:"table_exists"`
	IntegrityCheck   bool   `json:"integrity_check"`
	TotalTasks       int    `json:"total_tasks"`
	Error            string `json:"error,omitempty"`
}

func formatTimestamp(value *time.Time, raw string) string {
	if value != nil {
		return value.Format(time.RFC3339)
	}
	return raw
}
