package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/events"
	"github.com/phrazzld/tasker-api/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_EmitAppendsAndDispatches(t *testing.T) {
	t.Parallel()
	log := NewMemoryLog()
	mailer := &recordingDispatcher{name: "mail"}
	broker := &recordingDispatcher{name: "amqp"}
	n := NewNotifier(log, &inlineSubmitter{}, nil, mailer, broker)

	user := uuid.New()
	notif := note(user, time.Now().UTC())
	n.Emit(context.Background(), notif)

	assert.Equal(t, []domain.Notification{notif}, n.ForUser(user))
	assert.Equal(t, []domain.Notification{notif}, mailer.got)
	assert.Equal(t, []domain.Notification{notif}, broker.got)
}

func TestNotifier_FullQueueStillRecords(t *testing.T) {
	t.Parallel()
	log := NewMemoryLog()
	d := &recordingDispatcher{name: "mail"}
	n := NewNotifier(log, &inlineSubmitter{err: worker.ErrQueueFull}, nil, d)

	user := uuid.New()
	n.Emit(context.Background(), note(user, time.Now().UTC()))

	assert.Len(t, n.ForUser(user), 1)
	assert.Empty(t, d.got)
}

func TestNotifier_HandleEvent(t *testing.T) {
	t.Parallel()
	log := NewMemoryLog()
	n := NewNotifier(log, &inlineSubmitter{}, nil)

	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	task, err := domain.NewTask(uuid.New(), domain.TaskInput{Title: "Write report"}, now)
	require.NoError(t, err)

	require.NoError(t, n.HandleEvent(context.Background(),
		events.NewTaskEvent(domain.NotificationTaskCreated, task, now)))
	task.Status = domain.StatusCompleted
	require.NoError(t, n.HandleEvent(context.Background(),
		events.NewTaskEvent(domain.NotificationTaskUpdated, task, now.Add(time.Minute))))

	got := n.ForUser(task.UserID)
	require.Len(t, got, 2)
	assert.Equal(t, domain.NotificationTaskCreated, got[0].Type)
	assert.Equal(t, "New task created: Write report", got[0].Message)
	assert.Equal(t, task.ID, got[0].TaskID)
	assert.Equal(t, domain.NotificationTaskUpdated, got[1].Type)
	assert.Equal(t, "Task updated: Write report - Status: completed", got[1].Message)
}

func TestNotifier_WithWorkerPool(t *testing.T) {
	t.Parallel()
	pool := worker.NewPool(worker.PoolConfig{Workers: 2, QueueSize: 8, JobTimeout: time.Second}, nil)
	pool.Start()

	d := &recordingDispatcher{name: "mail"}
	n := NewNotifier(NewMemoryLog(), pool, nil, d)
	for i := 0; i < 5; i++ {
		n.Emit(context.Background(), note(uuid.New(), time.Now().UTC()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, pool.Stop(ctx))

	d.mu.Lock()
	defer d.mu.Unlock()
	assert.Len(t, d.got, 5)
}
