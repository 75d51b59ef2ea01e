package domain

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Paging defaults for task queries.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	// MaxPageLimit is the largest limit accepted from HTTP clients.
	MaxPageLimit = 100
)

// Scope is the ownership boundary of a query: one owner, or every task.
type Scope struct {
	ownerID uuid.UUID
	global  bool
}

// OwnerScope restricts a query to tasks owned by ownerID.
func OwnerScope(ownerID uuid.UUID) Scope {
	return Scope{ownerID: ownerID}
}

// GlobalScope is the unrestricted view used by administrators and the scheduler.
func GlobalScope() Scope {
	return Scope{global: true}
}

// IsGlobal reports whether the scope covers every owner.
func (s Scope) IsGlobal() bool { return s.global }

// OwnerID is the scoped owner; uuid.Nil for a global scope.
func (s Scope) OwnerID() uuid.UUID { return s.ownerID }

// Includes reports whether t is visible in s.
func (s Scope) Includes(t *Task) bool {
	return s.global || t.UserID == s.ownerID
}

// SortField selects the ordering of a task query.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortDeadline  SortField = "deadline"
	SortPriority  SortField = "priority"
)

// Valid reports whether f is a known sort field.
func (f SortField) Valid() bool {
	switch f {
	case SortCreatedAt, SortDeadline, SortPriority:
		return true
	default:
		return false
	}
}

// TaskFilter is a declarative task query. Zero values mean "no constraint"
// for Status, Priority and Search, and "default" for Sort, Page and Limit.
type TaskFilter struct {
	Status   Status
	Priority Priority
	Search   string
	Sort     SortField
	Page     int
	Limit    int
}

// Normalize fills defaults: createdAt sort, page 1, limit 10.
// A page below 1 becomes 1 and a non-positive limit becomes the default.
func (f TaskFilter) Normalize() TaskFilter {
	f.Search = strings.TrimSpace(f.Search)
	if f.Sort == "" {
		f.Sort = SortCreatedAt
	}
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	return f
}

// Validate rejects enum values outside the declared sets.
func (f TaskFilter) Validate() error {
	if f.Status != "" && !f.Status.Valid() {
		return NewValidationError("status", "must be one of pending, in-progress, completed")
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return NewValidationError("priority", "must be one of low, medium, high")
	}
	if f.Sort != "" && !f.Sort.Valid() {
		return NewValidationError("sort", "must be one of priority, createdAt, deadline")
	}
	return nil
}

// Offset is the number of rows skipped before the current page. It
// saturates at math.MaxInt instead of wrapping.
func (f TaskFilter) Offset() int {
	if f.Page <= 1 || f.Limit <= 0 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.Limit {
		return math.MaxInt
	}
	return (f.Page - 1) * f.Limit
}

// Matches reports whether t satisfies every predicate in f. Search is a
// case-insensitive substring match on title or description.
func (f TaskFilter) Matches(t *Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	return true
}

// SortTasks orders tasks in place by field, breaking ties on newest
// createdAt and then ascending id so pages are deterministic.
// Tasks without a deadline sort last under SortDeadline.
func SortTasks(tasks []*Task, field SortField) {
	slices.SortFunc(tasks, func(a, b *Task) int {
		var c int
		switch field {
		case SortPriority:
			c = cmp.Compare(b.Priority.Rank(), a.Priority.Rank())
		case SortDeadline:
			c = compareDeadline(a, b)
		}
		if c != 0 {
			return c
		}
		if c = b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
}

func compareDeadline(a, b *Task) int {
	switch {
	case a.Deadline == nil && b.Deadline == nil:
		return 0
	case a.Deadline == nil:
		return 1
	case b.Deadline == nil:
		return -1
	default:
		return a.Deadline.Compare(*b.Deadline)
	}
}

// TaskPage is one page of a task query plus the pre-pagination total.
type TaskPage struct {
	Items []*Task
	Total int
}
