// Package tasks persists tasks in SQLite and exposes the queries the
// reminder engine and CLI need: pending listings, upcoming-due windows,
// status transitions, and notification bookkeeping.
package tasks
