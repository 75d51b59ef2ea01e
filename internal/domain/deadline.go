package domain

import "time"

// DeadlineState is where a task sits relative to its deadline at one instant.
type DeadlineState int

const (
	// DeadlineNone means the task has no deadline.
	DeadlineNone DeadlineState = iota
	// DeadlineUpcoming means the deadline is further away than the window.
	DeadlineUpcoming
	// DeadlineApproaching means the deadline falls within the window.
	DeadlineApproaching
	// DeadlineOverdue means the deadline has passed.
	DeadlineOverdue
	// DeadlineSuppressed means the task is completed; its deadline no longer matters.
	DeadlineSuppressed
)

func (s DeadlineState) String() string {
	switch s {
	case DeadlineNone:
		return "no-deadline"
	case DeadlineUpcoming:
		return "upcoming"
	case DeadlineApproaching:
		return "approaching"
	case DeadlineOverdue:
		return "overdue"
	case DeadlineSuppressed:
		return "suppressed"
	default:
		return "unknown"
	}
}

// DeadlineState classifies t at now. A deadline strictly before now is
// overdue; one strictly before now+window is approaching.
func (t *Task) DeadlineState(now time.Time, window time.Duration) DeadlineState {
	if t.Status == StatusCompleted {
		return DeadlineSuppressed
	}
	if t.Deadline == nil {
		return DeadlineNone
	}
	switch {
	case t.Deadline.Before(now):
		return DeadlineOverdue
	case t.Deadline.Before(now.Add(window)):
		return DeadlineApproaching
	default:
		return DeadlineUpcoming
	}
}
