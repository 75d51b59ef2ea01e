package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies what happened to a task.
type NotificationType string

const (
	NotificationTaskCreated             NotificationType = "TASK_CREATED"
	NotificationTaskUpdated             NotificationType = "TASK_UPDATED"
	NotificationTaskDeadlineApproaching NotificationType = "TASK_DEADLINE_APPROACHING"
	NotificationTaskOverdue             NotificationType = "TASK_OVERDUE"
)

// Notification is a transient record about a task, addressed to its owner.
// UserID and TaskID are lookups only; the task may since have been deleted.
type Notification struct {
	Type      NotificationType `json:"type"`
	UserID    uuid.UUID        `json:"userId"`
	TaskID    uuid.UUID        `json:"taskId"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewTaskNotification builds the notification of type typ for t at now.
func NewTaskNotification(typ NotificationType, t *Task, now time.Time) Notification {
	return Notification{
		Type:      typ,
		UserID:    t.UserID,
		TaskID:    t.ID,
		Message:   notificationMessage(typ, t),
		Timestamp: now.UTC(),
	}
}

func notificationMessage(typ NotificationType, t *Task) string {
	switch typ {
	case NotificationTaskCreated:
		return fmt.Sprintf("New task created: %s", t.Title)
	case NotificationTaskUpdated:
		return fmt.Sprintf("Task updated: %s - Status: %s", t.Title, t.Status)
	case NotificationTaskDeadlineApproaching:
		due := ""
		if t.Deadline != nil {
			due = t.Deadline.UTC().Format(time.RFC1123)
		}
		return fmt.Sprintf("Task %q deadline is approaching (due: %s)", t.Title, due)
	case NotificationTaskOverdue:
		return fmt.Sprintf("Task %q is overdue!", t.Title)
	default:
		return t.Title
	}
}
