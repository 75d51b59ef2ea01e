package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/mail"
)

// Dispatcher delivers a notification over one channel.
type Dispatcher interface {
	Name() string
	Dispatch(ctx context.Context, n domain.Notification) error
}

// UserLookup resolves the owner of a notification.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// MailDispatcher emails notifications to their owner, or to a fallback
// address when the owner has none.
type MailDispatcher struct {
	sender   mail.Sender
	users    UserLookup
	fallback string
	logger   *slog.Logger
}

// NewMailDispatcher creates a MailDispatcher. fallback may be empty.
func NewMailDispatcher(sender mail.Sender, users UserLookup, fallback string, logger *slog.Logger) *MailDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &MailDispatcher{
		sender:   sender,
		users:    users,
		fallback: fallback,
		logger:   logger.With(slog.String("component", "mail_dispatcher")),
	}
}

// Name implements Dispatcher.
func (d *MailDispatcher) Name() string { return "mail" }

// Dispatch implements Dispatcher. A notification with no resolvable
// recipient is skipped, not failed.
func (d *MailDispatcher) Dispatch(ctx context.Context, n domain.Notification) error {
	to, err := d.recipient(ctx, n.UserID)
	if err != nil {
		return err
	}
	if to == "" {
		d.logger.WarnContext(ctx, "no email found for user", slog.String("user_id", n.UserID.String()))
		return nil
	}

	msg, err := renderEmail(n, to)
	if err != nil {
		return err
	}
	if err := d.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s email: %w", n.Type, err)
	}
	return nil
}

func (d *MailDispatcher) recipient(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := d.users.GetByID(ctx, userID)
	if err != nil {
		// The user may have been deleted since the notification was made.
		d.logger.DebugContext(ctx, "notification owner lookup failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return d.fallback, nil
	}
	if user.Email != "" {
		return user.Email, nil
	}
	return d.fallback, nil
}
