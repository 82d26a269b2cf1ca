package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"nudge/internal/config"
)

// ErrInvalidTransition indicates a status update that the lifecycle forbids.
var ErrInvalidTransition = errors.New("invalid status transition")

// Store manages task persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the task database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add inserts a new pending task and returns the stored record.
func (s *Store) Add(ctx context.Context, content string, due *time.Time, priority int) (*Task, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("task content is required")
	}
	if priority < 1 || priority > 5 {
		return nil, fmt.Errorf("priority must be between 1 and 5, got %d", priority)
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO tasks (content, due_time, priority, status, created_at, notification_count)
         VALUES (?, ?, ?, ?, ?, 0)`,
		content,
		nullableTimestamp(due),
		priority,
		StatusPending,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a task by identifier. A missing task yields (nil, nil).
func (s *Store) GetByID(ctx context.Context, id int64) (*Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// Pending returns pending tasks ordered for display: highest priority first,
// then nearest due time, then creation order. Limit <= 0 means unlimited.
func (s *Store) Pending(ctx context.Context, limit int) ([]*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE status = ?
        ORDER BY priority DESC, due_time IS NULL, due_time ASC, created_at ASC, id ASC`
	args := []any{StatusPending}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pending tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// Upcoming returns pending tasks whose due time falls within the window
// measured from now, including overdue tasks. Tasks with a due time that
// cannot be parsed are returned last so callers can log and degrade; tasks
// without any due time are never upcoming. The order is deterministic:
// stored due-time text ascending, then creation, then id.
func (s *Store) Upcoming(ctx context.Context, now time.Time, window time.Duration) ([]*Task, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+taskColumns+` FROM tasks
         WHERE status = ? AND due_time IS NOT NULL
         ORDER BY due_time ASC, created_at ASC, id ASC`,
		StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("query upcoming tasks: %w", err)
	}
	defer rows.Close()

	all, err := collectTasks(rows)
	if err != nil {
		return nil, err
	}

	cutoff := now.Add(window)
	due := make([]*Task, 0, len(all))
	var malformed []*Task
	for _, task := range all {
		switch {
		case task.DueTime != nil:
			if !task.DueTime.After(cutoff) {
				due = append(due, task)
			}
		case task.DueTimeMalformed():
			malformed = append(malformed, task)
		}
	}
	return append(due, malformed...), nil
}

// SetDueTime updates a task's due time. The timestamp is stored in the
// time's own zone so postpone arithmetic keeps the original schedule's
// offset.
func (s *Store) SetDueTime(ctx context.Context, id int64, due time.Time) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE tasks SET due_time = ? WHERE id = ?`,
		due.Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("update due time: %w", err)
	}
	return requireRow(res, id)
}

// SetStatus transitions a task's status. Only pending -> done is legal;
// done is terminal.
func (s *Store) SetStatus(ctx context.Context, id int64, status Status) error {
	if status != StatusDone {
		return fmt.Errorf("%w: cannot set status %q", ErrInvalidTransition, status)
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE tasks SET status = ? WHERE id = ? AND status = ?`,
		status,
		id,
		StatusPending,
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		existing, getErr := s.GetByID(ctx, id)
		if getErr != nil {
			return getErr
		}
		if existing == nil {
			return fmt.Errorf("task %d not found", id)
		}
		return fmt.Errorf("%w: task %d is already %s", ErrInvalidTransition, id, existing.Status)
	}
	return nil
}

// BumpNotification records a completed dialog interaction as a single atomic
// update: last_notified_at is set to now and notification_count increments.
func (s *Store) BumpNotification(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE tasks
         SET last_notified_at = ?, notification_count = notification_count + 1
         WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("bump notification: %w", err)
	}
	return requireRow(res, id)
}

// Remove deletes a task by identifier.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Stats returns task counts grouped by status.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM tasks GROUP BY status`)
	if err != nil {
		return Stats{}, fmt.Errorf("task stats: %w", err)
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, err
		}
		stats.Total += count
		switch status {
		case StatusPending:
			stats.Pending += count
		case StatusDone:
			stats.Done += count
		}
	}
	return stats, rows.Err()
}

// CheckHealth returns diagnostic information about the task database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat task database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("task database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping task database: %w", err)
	}
	health.DatabaseReadable = true

	var tableName string
	row := s.db.QueryRowContext(connCtx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'tasks'")
	if err := row.Scan(&tableName); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			health.Error = err.Error()
			return health, fmt.Errorf("query table info: %w", err)
		}
	} else {
		health.TableExists = true
	}

	if health.TableExists {
		row = s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM tasks")
		if err := row.Scan(&health.TotalTasks); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count tasks: %w", err)
		}
	}

	row = s.db.QueryRowContext(connCtx, "PRAGMA integrity_check")
	var integrityResult string
	if err := row.Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}

const taskColumns = "id, content, due_time, priority, status, created_at, last_notified_at, notification_count"

func scanTask(scanner interface{ Scan(dest ...any) error }) (*Task, error) {
	var (
		id            int64
		content       string
		dueRaw        sql.NullString
		priority      int
		statusStr     string
		createdRaw    sql.NullString
		notifiedRaw   sql.NullString
		notifiedCount int
	)

	if err := scanner.Scan(
		&id,
		&content,
		&dueRaw,
		&priority,
		&statusStr,
		&createdRaw,
		&notifiedRaw,
		&notifiedCount,
	); err != nil {
		return nil, err
	}

	task := &Task{
		ID:                id,
		Content:           content,
		Priority:          priority,
		Status:            Status(statusStr),
		NotificationCount: notifiedCount,
	}

	if dueRaw.Valid {
		task.DueTimeRaw = dueRaw.String
		if due, err := parseTimestamp(dueRaw.String); err == nil {
			task.DueTime = &due
		}
	}
	if notifiedRaw.Valid {
		task.LastNotifiedRaw = notifiedRaw.String
		if notified, err := parseTimestamp(notifiedRaw.String); err == nil {
			task.LastNotifiedAt = &notified
		}
	}
	if created, err := parseTimestamp(createdRaw.String); err == nil {
		task.CreatedAt = created
	}

	return task, nil
}

func collectTasks(rows *sql.Rows) ([]*Task, error) {
	var result []*Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, rows.Err()
}

func requireRow(res sql.Result, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("task %d not found", id)
	}
	return nil
}

func nullableTimestamp(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.Format(time.RFC3339Nano)
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
