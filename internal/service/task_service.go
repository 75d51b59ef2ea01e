package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/events"
	"github.com/phrazzld/tasker-api/internal/store"
)

// TaskService provides task queries and mutations.
type TaskService interface {
	// Query returns a page of the owner's tasks.
	Query(ctx context.Context, ownerID uuid.UUID, filter domain.TaskFilter) (*domain.TaskPage, error)

	// AdminQuery returns a page across every owner's tasks.
	AdminQuery(ctx context.Context, filter domain.TaskFilter) (*domain.TaskPage, error)

	// Get returns one of the owner's tasks.
	Get(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	// Create stores a new task for the owner and emits TASK_CREATED.
	Create(ctx context.Context, ownerID uuid.UUID, in domain.TaskInput) (*domain.Task, error)

	// Update applies a partial update to one of the owner's tasks and emits TASK_UPDATED.
	Update(ctx context.Context, id, ownerID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// Delete removes one of the owner's tasks. Missing or foreign ids are a no-op.
	Delete(ctx context.Context, id, ownerID uuid.UUID) error

	// AdminDelete removes any task. Missing ids are a no-op.
	AdminDelete(ctx context.Context, id uuid.UUID) error
}

type taskServiceImpl struct {
	tasks  store.TaskStore
	events events.EventEmitter
	logger *slog.Logger
	now    func() time.Time
}

// NewTaskService creates a TaskService. emitter may be nil, in which case
// no events are raised.
func NewTaskService(tasks store.TaskStore, emitter events.EventEmitter, logger *slog.Logger) TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &taskServiceImpl{
		tasks:  tasks,
		events: emitter,
		logger: logger.With("component", "task_service"),
		now:    time.Now,
	}
}

func (s *taskServiceImpl) Query(ctx context.Context, ownerID uuid.UUID, filter domain.TaskFilter) (*domain.TaskPage, error) {
	return s.query(ctx, domain.OwnerScope(ownerID), filter)
}

func (s *taskServiceImpl) AdminQuery(ctx context.Context, filter domain.TaskFilter) (*domain.TaskPage, error) {
	return s.query(ctx, domain.GlobalScope(), filter)
}

func (s *taskServiceImpl) query(ctx context.Context, scope domain.Scope, filter domain.TaskFilter) (*domain.TaskPage, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	filter = filter.Normalize()

	page, err := s.tasks.Query(ctx, scope, filter)
	if err != nil {
		s.logger.Error("failed to query tasks",
			"error", err,
			"global", scope.IsGlobal(),
			"owner_id", scope.OwnerID())
		return nil, NewServiceError("task", "query", err)
	}
	return page, nil
}

func (s *taskServiceImpl) Get(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.Get(ctx, id, ownerID)
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			s.logger.Error("failed to get task", "error", err, "task_id", id)
		}
		return nil, NewServiceError("task", "get", err)
	}
	return task, nil
}

func (s *taskServiceImpl) Create(ctx context.Context, ownerID uuid.UUID, in domain.TaskInput) (*domain.Task, error) {
	now := s.now()
	task, err := domain.NewTask(ownerID, in, now)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		s.logger.Error("failed to save task", "error", err, "user_id", ownerID)
		return nil, NewServiceError("task", "create", err)
	}

	s.logger.Info("task created", "task_id", task.ID, "user_id", ownerID)
	s.emit(ctx, domain.NotificationTaskCreated, task, now)
	return task, nil
}

func (s *taskServiceImpl) Update(ctx context.Context, id, ownerID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	task, err := s.tasks.Update(ctx, id, ownerID, patch, now)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			s.logger.Debug("update of missing or foreign task", "task_id", id, "user_id", ownerID)
		} else {
			s.logger.Error("failed to update task", "error", err, "task_id", id)
		}
		return nil, NewServiceError("task", "update", err)
	}

	s.logger.Info("task updated", "task_id", task.ID, "user_id", ownerID)
	s.emit(ctx, domain.NotificationTaskUpdated, task, now)
	return task, nil
}

func (s *taskServiceImpl) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	deleted, err := s.tasks.Delete(ctx, id, ownerID)
	if err != nil {
		s.logger.Error("failed to delete task", "error", err, "task_id", id)
		return NewServiceError("task", "delete", err)
	}
	s.logger.Info("task delete processed", "task_id", id, "user_id", ownerID, "deleted", deleted)
	return nil
}

func (s *taskServiceImpl) AdminDelete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.tasks.AdminDelete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete task as admin", "error", err, "task_id", id)
		return NewServiceError("task", "admin_delete", err)
	}
	s.logger.Info("admin task delete processed", "task_id", id, "deleted", deleted)
	return nil
}

// emit raises a task event. A handler failure is logged and never reaches
// the caller; the mutation has already been stored.
func (s *taskServiceImpl) emit(ctx context.Context, typ domain.NotificationType, task *domain.Task, now time.Time) {
	if s.events == nil {
		return
	}
	if err := s.events.EmitEvent(ctx, events.NewTaskEvent(typ, task, now)); err != nil {
		s.logger.Warn("failed to emit task event",
			"error", err,
			"event_type", string(typ),
			"task_id", task.ID)
	}
}
