package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// TaskStore defines the persistence contract for tasks. Ownership is part of
// every scoped lookup predicate, so a task owned by someone else is reported
// exactly like a missing one.
type TaskStore interface {
	// Query returns one page of tasks visible in scope that match filter,
	// plus the number of matching tasks before pagination. The filter must
	// already be normalized and validated. No matches is an empty page, not
	// an error.
	Query(ctx context.Context, scope domain.Scope, filter domain.TaskFilter) (*domain.TaskPage, error)

	// Get returns the task with id owned by ownerID.
	// Returns ErrTaskNotFound if it does not exist or is owned by someone else.
	Get(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	// Create persists a validated task.
	Create(ctx context.Context, task *domain.Task) error

	// Update merges patch into the task with id owned by ownerID in a single
	// statement and returns the stored result. updatedAt becomes
	// max(now, previous updatedAt). Returns ErrTaskNotFound on no match.
	Update(ctx context.Context, id, ownerID uuid.UUID, patch domain.TaskPatch, now time.Time) (*domain.Task, error)

	// Delete removes the task with id owned by ownerID. A missing or foreign
	// id is not an error; the result reports whether a row was removed.
	Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error)

	// AdminDelete removes the task with id regardless of owner. Idempotent.
	AdminDelete(ctx context.Context, id uuid.UUID) (bool, error)
}
