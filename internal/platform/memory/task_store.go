package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/store"
)

// TaskStore is an in-memory store.TaskStore.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*domain.Task
}

// NewTaskStore returns an empty TaskStore.
func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

var _ store.TaskStore = (*TaskStore)(nil)

// Query implements store.TaskStore.Query.
func (s *TaskStore) Query(_ context.Context, scope domain.Scope, filter domain.TaskFilter) (*domain.TaskPage, error) {
	// Update mutates stored tasks in place, so copy before unlocking.
	s.mu.RLock()
	matched := make([]*domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if scope.Includes(t) && filter.Matches(t) {
			matched = append(matched, cloneTask(t))
		}
	}
	s.mu.RUnlock()

	domain.SortTasks(matched, filter.Sort)

	page := &domain.TaskPage{Items: []*domain.Task{}, Total: len(matched)}
	start := filter.Offset()
	if start < 0 || start >= len(matched) {
		return page, nil
	}
	end := start + min(filter.Limit, len(matched)-start)
	page.Items = append(page.Items, matched[start:end]...)
	return page, nil
}

// Get implements store.TaskStore.Get.
func (s *TaskStore) Get(_ context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

// Create implements store.TaskStore.Create.
func (s *TaskStore) Create(_ context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return store.ErrDuplicate
	}
	s.tasks[task.ID] = cloneTask(task)
	return nil
}

// Update implements store.TaskStore.Update.
func (s *TaskStore) Update(
	_ context.Context,
	id, ownerID uuid.UUID,
	patch domain.TaskPatch,
	now time.Time,
) (*domain.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	t.Apply(patch, now)
	return cloneTask(t), nil
}

// Delete implements store.TaskStore.Delete.
func (s *TaskStore) Delete(_ context.Context, id, ownerID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != ownerID {
		return false, nil
	}
	delete(s.tasks, id)
	return true, nil
}

// AdminDelete implements store.TaskStore.AdminDelete.
func (s *TaskStore) AdminDelete(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return false, nil
	}
	delete(s.tasks, id)
	return true, nil
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	if t.Deadline != nil {
		d := *t.Deadline
		c.Deadline = &d
	}
	return &c
}
