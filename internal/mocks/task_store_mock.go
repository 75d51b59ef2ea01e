package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/stretchr/testify/mock"
)

// TaskStore is a mock of store.TaskStore for use with testify/mock
type TaskStore struct {
	mock.Mock
}

// Query is a mock implementation of store.TaskStore.Query
func (m *TaskStore) Query(ctx context.Context, scope domain.Scope, filter domain.TaskFilter) (*domain.TaskPage, error) {
	args := m.Called(ctx, scope, filter)
	if page, ok := args.Get(0).(*domain.TaskPage); ok {
		return page, args.Error(1)
	}
	return nil, args.Error(1)
}

// Get is a mock implementation of store.TaskStore.Get
func (m *TaskStore) Get(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, id, ownerID)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

// Create is a mock implementation of store.TaskStore.Create
func (m *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

// Update is a mock implementation of store.TaskStore.Update
func (m *TaskStore) Update(
	ctx context.Context,
	id, ownerID uuid.UUID,
	patch domain.TaskPatch,
	now time.Time,
) (*domain.Task, error) {
	args := m.Called(ctx, id, ownerID, patch, now)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

// Delete is a mock implementation of store.TaskStore.Delete
func (m *TaskStore) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Bool(0), args.Error(1)
}

// AdminDelete is a mock implementation of store.TaskStore.AdminDelete
func (m *TaskStore) AdminDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
