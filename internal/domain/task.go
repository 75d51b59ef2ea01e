package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Priority is the declared urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the declared priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Rank is the declared order of p: low < medium < high.
// It orders, it does not weigh.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	default:
		return -1
	}
}

// Status is the progress state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is one of the declared statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// MaxTitleLength bounds Task.Title, counted in characters.
const MaxTitleLength = 255

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          uuid.UUID  `json:"id"          db:"id"`
	Title       string     `json:"title"       db:"title"`
	Description string     `json:"description" db:"description"`
	Priority    Priority   `json:"priority"    db:"priority"`
	Status      Status     `json:"status"      db:"status"`
	Deadline    *time.Time `json:"deadline"    db:"deadline"`
	UserID      uuid.UUID  `json:"userId"      db:"user_id"`
	CreatedAt   time.Time  `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt"   db:"updated_at"`
}

// TaskInput carries the client-supplied fields of a new task.
// Empty Priority and Status take their defaults.
type TaskInput struct {
	Title       string
	Description string
	Priority    Priority
	Status      Status
	Deadline    *time.Time
}

// NewTask builds a validated task for ownerID. Priority defaults to medium,
// status to pending, and both timestamps are set to now in UTC.
func NewTask(ownerID uuid.UUID, in TaskInput, now time.Time) (*Task, error) {
	now = now.UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Priority:    in.Priority,
		Status:      in.Status,
		Deadline:    utcPtr(in.Deadline),
		UserID:      ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Priority == "" {
		task.Priority = PriorityMedium
	}
	if task.Status == "" {
		task.Status = StatusPending
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks the task's fields and returns the first violation.
func (t *Task) Validate() error {
	if t.UserID == uuid.Nil {
		return NewValidationError("userId", "owner is required")
	}
	if err := validateTitle(t.Title); err != nil {
		return err
	}
	if !t.Priority.Valid() {
		return NewValidationError("priority", "must be one of low, medium, high")
	}
	if !t.Status.Valid() {
		return NewValidationError("status", "must be one of pending, in-progress, completed")
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		return NewValidationError("updatedAt", "cannot precede createdAt")
	}
	return nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return NewValidationError("title", "title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return NewValidationError("title", "title must be at most 255 characters")
	}
	return nil
}

// TaskPatch is a partial update. Nil fields are left untouched; ClearDeadline
// removes the deadline and wins over Deadline.
type TaskPatch struct {
	Title         *string
	Description   *string
	Priority      *Priority
	Status        *Status
	Deadline      *time.Time
	ClearDeadline bool
}

// Validate checks only the fields the patch sets.
func (p TaskPatch) Validate() error {
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return NewValidationError("priority", "must be one of low, medium, high")
	}
	if p.Status != nil && !p.Status.Valid() {
		return NewValidationError("status", "must be one of pending, in-progress, completed")
	}
	return nil
}

// Apply merges p into t and advances UpdatedAt to now, never backwards.
func (t *Task) Apply(p TaskPatch, now time.Time) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	switch {
	case p.ClearDeadline:
		t.Deadline = nil
	case p.Deadline != nil:
		t.Deadline = utcPtr(p.Deadline)
	}
	t.UpdatedAt = NextUpdatedAt(t.UpdatedAt, now)
}

// NextUpdatedAt returns max(now, previous) in UTC.
func NextUpdatedAt(previous, now time.Time) time.Time {
	now = now.UTC()
	if now.Before(previous) {
		return previous
	}
	return now
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
