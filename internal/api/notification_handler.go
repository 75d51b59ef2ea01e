package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// NotificationReader returns a user's notifications oldest-first.
type NotificationReader interface {
	ForUser(userID uuid.UUID) []domain.Notification
}

// NotificationHandler serves the caller's notification history.
type NotificationHandler struct {
	notifications NotificationReader
}

// NewNotificationHandler creates a NotificationHandler.
func NewNotificationHandler(notifications NotificationReader) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List handles GET /api/notifications.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	items := h.notifications.ForUser(p.UserID)
	if items == nil {
		items = []domain.Notification{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, items)
}
