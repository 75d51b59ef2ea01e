package notification

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/events"
	"github.com/phrazzld/tasker-api/internal/worker"
)

// Notifier records notifications and schedules their delivery.
type Notifier struct {
	log         Log
	jobs        worker.Submitter
	dispatchers []Dispatcher
	logger      *slog.Logger
}

// NewNotifier creates a Notifier. Delivery jobs go to jobs, one per
// dispatcher per notification.
func NewNotifier(log Log, jobs worker.Submitter, logger *slog.Logger, dispatchers ...Dispatcher) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		log:         log,
		jobs:        jobs,
		dispatchers: dispatchers,
		logger:      logger.With(slog.String("component", "notifier")),
	}
}

// Emit appends n to the log and queues its delivery. It never blocks on
// delivery and never fails; a full queue drops the delivery with a warning.
func (n *Notifier) Emit(ctx context.Context, notif domain.Notification) {
	n.log.Append(notif)
	n.logger.InfoContext(ctx, "notification emitted",
		slog.String("type", string(notif.Type)),
		slog.String("task_id", notif.TaskID.String()),
		slog.String("user_id", notif.UserID.String()))

	for _, d := range n.dispatchers {
		job := worker.JobFunc{
			JobName: "dispatch_" + d.Name(),
			Fn: func(ctx context.Context) error {
				return d.Dispatch(ctx, notif)
			},
		}
		if err := n.jobs.Submit(job); err != nil {
			n.logger.WarnContext(ctx, "notification dispatch dropped",
				slog.String("dispatcher", d.Name()),
				slog.String("type", string(notif.Type)),
				slog.String("error", err.Error()))
		}
	}
}

// HandleEvent turns task mutation events into notifications.
func (n *Notifier) HandleEvent(ctx context.Context, event *events.TaskEvent) error {
	n.Emit(ctx, domain.NewTaskNotification(event.Type, &event.Task, event.OccurredAt))
	return nil
}

// ForUser returns the user's recorded notifications, oldest first.
func (n *Notifier) ForUser(userID uuid.UUID) []domain.Notification {
	return n.log.ForUser(userID)
}
