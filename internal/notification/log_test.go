package notification

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func note(user uuid.UUID, at time.Time) domain.Notification {
	return domain.Notification{
		Type:      domain.NotificationTaskCreated,
		UserID:    user,
		TaskID:    uuid.New(),
		Message:   "New task created: x",
		Timestamp: at,
	}
}

func TestMemoryLog_ForUserOldestFirst(t *testing.T) {
	t.Parallel()
	l := NewMemoryLog()
	alice, bob := uuid.New(), uuid.New()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	l.Append(note(alice, base))
	l.Append(note(bob, base.Add(time.Minute)))
	l.Append(note(alice, base.Add(3*time.Minute)))
	// Out-of-order append still lands in timestamp order.
	l.Append(note(alice, base.Add(2*time.Minute)))

	got := l.ForUser(alice)
	if assert.Len(t, got, 3) {
		assert.Equal(t, base, got[0].Timestamp)
		assert.Equal(t, base.Add(2*time.Minute), got[1].Timestamp)
		assert.Equal(t, base.Add(3*time.Minute), got[2].Timestamp)
	}
	assert.Len(t, l.ForUser(bob), 1)
	assert.NotNil(t, l.ForUser(uuid.New()))
	assert.Empty(t, l.ForUser(uuid.New()))
}

func TestMemoryLog_TrimOlderThan(t *testing.T) {
	t.Parallel()
	l := NewMemoryLog()
	user := uuid.New()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	old := note(user, now.Add(-8*24*time.Hour))
	recent := note(user, now.Add(-24*time.Hour))

	l.Append(old)
	l.Append(recent)

	removed := l.TrimOlderThan(now.Add(-7 * 24 * time.Hour))
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, []domain.Notification{recent}, l.ForUser(user))

	assert.Zero(t, l.TrimOlderThan(now.Add(-7*24*time.Hour)))
}

func TestMemoryLog_TrimAll(t *testing.T) {
	t.Parallel()
	l := NewMemoryLog()
	user := uuid.New()
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		l.Append(note(user, now.Add(-time.Duration(i)*time.Hour)))
	}
	assert.Equal(t, 5, l.TrimOlderThan(now.Add(time.Second)))
	assert.Zero(t, l.Len())
}
