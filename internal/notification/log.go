package notification

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// Log holds recent notifications, oldest first.
type Log interface {
	Append(n domain.Notification)
	// ForUser returns the user's notifications oldest first.
	ForUser(userID uuid.UUID) []domain.Notification
	// TrimOlderThan drops entries stamped before cutoff and reports how many.
	TrimOlderThan(cutoff time.Time) int
}

// MemoryLog is a mutex-guarded, timestamp-ordered Log.
type MemoryLog struct {
	mu      sync.Mutex
	entries []domain.Notification
}

// NewMemoryLog returns an empty log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Append implements Log. An entry older than the tail is inserted in
// timestamp order so the log stays sorted.
func (l *MemoryLog) Append(n domain.Notification) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := len(l.entries)
	for i > 0 && l.entries[i-1].Timestamp.After(n.Timestamp) {
		i--
	}
	l.entries = append(l.entries, domain.Notification{})
	copy(l.entries[i+1:], l.entries[i:])
	l.entries[i] = n
}

// ForUser implements Log.
func (l *MemoryLog) ForUser(userID uuid.UUID) []domain.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.Notification, 0)
	for _, n := range l.entries {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// TrimOlderThan implements Log. Only a prefix is removed.
func (l *MemoryLog) TrimOlderThan(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := sort.Search(len(l.entries), func(i int) bool {
		return !l.entries[i].Timestamp.Before(cutoff)
	})
	if n == 0 {
		return 0
	}
	remaining := make([]domain.Notification, len(l.entries)-n)
	copy(remaining, l.entries[n:])
	l.entries = remaining
	return n
}

// Len reports the number of entries.
func (l *MemoryLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
