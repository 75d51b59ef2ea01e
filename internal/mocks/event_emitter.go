package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/tasker-api/internal/events"
)

// MockEventEmitter records emitted events and returns Err.
type MockEventEmitter struct {
	mu     sync.Mutex
	Events []*events.TaskEvent
	Err    error
}

// EmitEvent implements events.EventEmitter
func (m *MockEventEmitter) EmitEvent(_ context.Context, event *events.TaskEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return m.Err
}

// Emitted returns a copy of the recorded events.
func (m *MockEventEmitter) Emitted() []*events.TaskEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*events.TaskEvent(nil), m.Events...)
}
