package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a task store over db, which may be a
// connection pool or a transaction. If logger is nil, slog.Default is used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		// ALLOW-PANIC: constructor misuse is a programming error
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx returns a store that runs every statement on tx.
func (s *PostgresTaskStore) WithTx(tx store.DBTX) *PostgresTaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

// Query implements store.TaskStore.Query. COUNT and page fetch are separate
// statements, so a concurrent write may skew total against items.
func (s *PostgresTaskStore) Query(
	ctx context.Context,
	scope domain.Scope,
	filter domain.TaskFilter,
) (*domain.TaskPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	countSQL, pageSQL, args := buildTaskQueries(scope, filter)

	var total int
	if err := s.db.GetContext(ctx, &total, countSQL, args...); err != nil {
		log.Error("failed to count tasks", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "query", "failed to count tasks", MapError(err))
	}

	page := &domain.TaskPage{Items: []*domain.Task{}, Total: total}
	if total == 0 {
		return page, nil
	}

	pageArgs := append(append([]any{}, args...), filter.Limit, filter.Offset())
	if err := s.db.SelectContext(ctx, &page.Items, pageSQL, pageArgs...); err != nil {
		log.Error("failed to fetch task page", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "query", "failed to fetch tasks", MapError(err))
	}

	log.Debug("task query completed",
		slog.Bool("global", scope.IsGlobal()),
		slog.Int("total", total),
		slog.Int("returned", len(page.Items)))
	return page, nil
}

// Get implements store.TaskStore.Get.
func (s *PostgresTaskStore) Get(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	err := s.db.GetContext(ctx, &task,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task",
			slog.String("task_id", id.String()),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "get", "failed to get task", MapError(err))
	}
	return &task, nil
}

// Create implements store.TaskStore.Create.
// Returns store.ErrInvalidEntity if the owner does not exist.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return err
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO tasks (id, title, description, priority, status, deadline, user_id, created_at, updated_at)
		VALUES (:id, :title, :description, CAST(:priority AS task_priority), CAST(:status AS task_status),
		        :deadline, :user_id, :created_at, :updated_at)`, task)
	if err != nil {
		log.Error("failed to insert task",
			slog.String("task_id", task.ID.String()),
			slog.String("user_id", task.UserID.String()),
			slog.String("error", err.Error()))
		return store.NewStoreError("task", "create", "failed to insert task", MapError(err))
	}

	log.Debug("task created", slog.String("task_id", task.ID.String()))
	return nil
}

// Update implements store.TaskStore.Update as one UPDATE ... RETURNING, so
// the ownership check and the merge cannot interleave with another writer.
func (s *PostgresTaskStore) Update(
	ctx context.Context,
	id, ownerID uuid.UUID,
	patch domain.TaskPatch,
	now time.Time,
) (*domain.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var title *string
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		title = &trimmed
	}
	var deadline *time.Time
	if patch.Deadline != nil {
		d := patch.Deadline.UTC()
		deadline = &d
	}

	var task domain.Task
	err := s.db.GetContext(ctx, &task, `
		UPDATE tasks SET
			title       = COALESCE($3::text, title),
			description = COALESCE($4::text, description),
			priority    = COALESCE($5::task_priority, priority),
			status      = COALESCE($6::task_status, status),
			deadline    = CASE WHEN $7::boolean THEN NULL ELSE COALESCE($8::timestamptz, deadline) END,
			updated_at  = GREATEST($9::timestamptz, updated_at)
		WHERE id = $1 AND user_id = $2
		RETURNING `+taskColumns,
		id, ownerID,
		title, patch.Description, nullableEnum(patch.Priority), nullableEnum(patch.Status),
		patch.ClearDeadline, deadline, now.UTC(),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update task",
			slog.String("task_id", id.String()),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "update", "failed to update task", MapError(err))
	}
	return &task, nil
}

// Delete implements store.TaskStore.Delete.
func (s *PostgresTaskStore) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	return s.delete(ctx, "delete", `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, ownerID)
}

// AdminDelete implements store.TaskStore.AdminDelete.
func (s *PostgresTaskStore) AdminDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.delete(ctx, "admin_delete", `DELETE FROM tasks WHERE id = $1`, id)
}

func (s *PostgresTaskStore) delete(ctx context.Context, op, query string, args ...any) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to delete task", slog.String("operation", op), slog.String("error", err.Error()))
		return false, store.NewStoreError("task", op, "failed to delete task", MapError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		log.Debug("delete matched no task", slog.String("operation", op))
	}
	return n > 0, nil
}

// nullableEnum turns an optional enum into a driver value, nil when unset.
func nullableEnum[T ~string](v *T) any {
	if v == nil {
		return nil
	}
	return string(*v)
}
