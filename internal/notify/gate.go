// Package notify decides whether a due task may interrupt the user again.
// Decisions are pure functions of the task's notification history and the
// configured throttle tiers, so the reminder engine can log and test them
// without touching the store.
package notify

import (
	"fmt"
	"time"

	"nudge/internal/config"
	"nudge/internal/tasks"
)

// Tier buckets tasks by priority for throttling purposes.
type Tier string

const (
	// TierHigh covers priorities 4 and 5.
	TierHigh Tier = "high"
	// TierMedium covers priority 3.
	TierMedium Tier = "medium"
	// TierLow covers priorities 1 and 2.
	TierLow Tier = "low"
)

// TierFor maps a priority to its throttle tier.
func TierFor(priority int) Tier {
	switch {
	case priority >= 4:
		return TierHigh
	case priority == 3:
		return TierMedium
	default:
		return TierLow
	}
}

// Decision explains a gate verdict so callers can log why a task was or was
// not surfaced.
type Decision struct {
	Allow  bool
	Tier   Tier
	Reason string
}

// Gate applies per-tier notification throttling.
type Gate struct {
	highMaxCount   int
	highInterval   time.Duration
	mediumMaxCount int
	mediumInterval time.Duration
}

// NewGate builds a gate from the configured throttle settings.
func NewGate(cfg *config.Config) *Gate {
	return &Gate{
		highMaxCount:   cfg.Throttle.HighMaxCount,
		highInterval:   time.Duration(cfg.Throttle.HighIntervalMinutes) * time.Minute,
		mediumMaxCount: cfg.Throttle.MediumMaxCount,
		mediumInterval: time.Duration(cfg.Throttle.MediumIntervalMinutes) * time.Minute,
	}
}

// ShouldNotify reports whether the task may be surfaced at the given instant.
//
// A task that has never been notified always passes. Low-tier tasks are
// notified exactly once. High and medium tiers re-notify once the configured
// interval has elapsed since the last notification, until the tier's maximum
// count is reached. A last-notified timestamp that cannot be parsed is
// treated as never notified so a corrupted row cannot silence a task
// forever.
func (g *Gate) ShouldNotify(task *tasks.Task, now time.Time) Decision {
	tier := TierFor(task.Priority)

	if task.NotificationCount == 0 {
		return Decision{Allow: true, Tier: tier, Reason: "never notified"}
	}

	if tier == TierLow {
		return Decision{Allow: false, Tier: tier, Reason: "low tier notifies once"}
	}

	maxCount, interval := g.highMaxCount, g.highInterval
	if tier == TierMedium {
		maxCount, interval = g.mediumMaxCount, g.mediumInterval
	}

	if task.NotificationCount >= maxCount {
		return Decision{
			Allow:  false,
			Tier:   tier,
			Reason: fmt.Sprintf("reached tier maximum of %d notifications", maxCount),
		}
	}

	if task.LastNotifiedAt == nil {
		return Decision{Allow: true, Tier: tier, Reason: "last notification time unreadable"}
	}

	elapsed := now.Sub(*task.LastNotifiedAt)
	if elapsed < interval {
		return Decision{
			Allow:  false,
			Tier:   tier,
			Reason: fmt.Sprintf("only %s since last notification, tier interval is %s", elapsed.Round(time.Second), interval),
		}
	}

	return Decision{Allow: true, Tier: tier, Reason: "tier interval elapsed"}
}
