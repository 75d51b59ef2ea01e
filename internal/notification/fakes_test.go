package notification

import (
	"context"
	"sync"

	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/mail"
	"github.com/phrazzld/tasker-api/internal/worker"
)

// inlineSubmitter runs jobs synchronously.
type inlineSubmitter struct {
	err error
}

func (s *inlineSubmitter) Submit(job worker.Job) error {
	if s.err != nil {
		return s.err
	}
	_ = job.Run(context.Background())
	return nil
}

type recordingDispatcher struct {
	mu   sync.Mutex
	name string
	got  []domain.Notification
	err  error
}

func (d *recordingDispatcher) Name() string { return d.name }

func (d *recordingDispatcher) Dispatch(_ context.Context, n domain.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.got = append(d.got, n)
	return d.err
}

type recordingEmitter struct {
	mu  sync.Mutex
	got []domain.Notification
}

func (e *recordingEmitter) Emit(_ context.Context, n domain.Notification) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.got = append(e.got, n)
}

func (e *recordingEmitter) emitted() []domain.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.Notification(nil), e.got...)
}

type recordingSender struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}
