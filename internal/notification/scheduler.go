package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// ErrScanInProgress is returned by Scan when another scan has not finished.
var ErrScanInProgress = errors.New("deadline scan already in progress")

// TaskQuerier is the read side of the task store the scheduler needs.
type TaskQuerier interface {
	Query(ctx context.Context, scope domain.Scope, filter domain.TaskFilter) (*domain.TaskPage, error)
}

// Emitter accepts notifications for recording and delivery.
type Emitter interface {
	Emit(ctx context.Context, n domain.Notification)
}

// SchedulerConfig controls scan cadence, log retention and dedup.
type SchedulerConfig struct {
	ScanInterval      time.Duration
	CleanupInterval   time.Duration
	Retention         time.Duration
	ApproachingWindow time.Duration
	BatchSize         int
	ScanTimeout       time.Duration
	// RenotifyEveryScan emits for every eligible task on every scan.
	RenotifyEveryScan bool
}

// SchedulerConfigFrom converts the loaded notification settings.
func SchedulerConfigFrom(cfg config.NotificationConfig) SchedulerConfig {
	return SchedulerConfig{
		ScanInterval:      time.Duration(cfg.ScanIntervalMinutes) * time.Minute,
		CleanupInterval:   time.Duration(cfg.CleanupIntervalMinutes) * time.Minute,
		Retention:         time.Duration(cfg.RetentionHours) * time.Hour,
		ApproachingWindow: time.Duration(cfg.ApproachingWindowHours) * time.Hour,
		BatchSize:         cfg.ScanBatchSize,
		ScanTimeout:       time.Duration(cfg.ScanTimeoutSeconds) * time.Second,
		RenotifyEveryScan: cfg.RenotifyEveryScan,
	}
}

// ScanResult summarises one scan.
type ScanResult struct {
	Scanned     int
	Approaching int
	Overdue     int
	// Suppressed counts eligible tasks already notified in their current state.
	Suppressed int
}

type notified struct {
	state    domain.DeadlineState
	deadline time.Time
}

// Scheduler finds open tasks whose deadlines are near or past and emits
// one notification per task per (state, deadline) pair.
type Scheduler struct {
	tasks   TaskQuerier
	emitter Emitter
	log     Log
	cfg     SchedulerConfig
	logger  *slog.Logger
	now     func() time.Time

	scanning atomic.Bool
	wg       sync.WaitGroup

	mu   sync.Mutex
	seen map[uuid.UUID]notified
}

// NewScheduler creates a scheduler. Zero config durations fall back to
// hourly scans, daily cleanup, seven days retention and a 24h window.
func NewScheduler(tasks TaskQuerier, emitter Emitter, log Log, cfg SchedulerConfig, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 24 * time.Hour
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 7 * 24 * time.Hour
	}
	if cfg.ApproachingWindow <= 0 {
		cfg.ApproachingWindow = 24 * time.Hour
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1000
	}
	return &Scheduler{
		tasks:   tasks,
		emitter: emitter,
		log:     log,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "deadline_scheduler")),
		now:     time.Now,
		seen:    make(map[uuid.UUID]notified),
	}
}

// Run scans once immediately, then on every scan tick, and trims the log on
// every cleanup tick. It returns after ctx is done and any running scan has
// finished.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("deadline scheduler started",
		slog.Duration("scan_interval", s.cfg.ScanInterval),
		slog.Duration("cleanup_interval", s.cfg.CleanupInterval))
	defer s.logger.Info("deadline scheduler stopped")

	scanTicker := time.NewTicker(s.cfg.ScanInterval)
	defer scanTicker.Stop()
	cleanupTicker := time.NewTicker(s.cfg.CleanupInterval)
	defer cleanupTicker.Stop()

	s.startScan(ctx)
	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return
		case <-scanTicker.C:
			s.startScan(ctx)
		case <-cleanupTicker.C:
			s.Cleanup()
		}
	}
}

// startScan runs a scan on its own goroutine so a slow scan never delays
// cleanup. A tick that finds a scan running is skipped.
func (s *Scheduler) startScan(ctx context.Context) {
	if s.scanning.Load() {
		s.logger.Warn("skipping deadline scan; previous scan still running")
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.Scan(ctx); err != nil && !errors.Is(err, ErrScanInProgress) {
			s.logger.Error("deadline scan failed", slog.String("error", err.Error()))
		}
	}()
}

// Scan classifies every open task and emits the notifications that are due.
// Failures of one status query do not stop the other.
func (s *Scheduler) Scan(ctx context.Context) (ScanResult, error) {
	if !s.scanning.CompareAndSwap(false, true) {
		return ScanResult{}, ErrScanInProgress
	}
	defer s.scanning.Store(false)

	if s.cfg.ScanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ScanTimeout)
		defer cancel()
	}

	started := s.now()
	now := started.UTC()
	var result ScanResult
	var errs []error
	eligible := make(map[uuid.UUID]struct{})

	// Completed tasks are never eligible, so only open statuses are fetched.
	for _, status := range []domain.Status{domain.StatusPending, domain.StatusInProgress} {
		page, err := s.tasks.Query(ctx, domain.GlobalScope(), domain.TaskFilter{
			Status: status,
			Sort:   domain.SortDeadline,
			Page:   1,
			Limit:  s.cfg.BatchSize,
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if page.Total > len(page.Items) {
			s.logger.WarnContext(ctx, "deadline scan batch truncated",
				slog.String("status", string(status)),
				slog.Int("total", page.Total),
				slog.Int("batch_size", s.cfg.BatchSize))
		}
		for _, task := range page.Items {
			result.Scanned++
			s.consider(ctx, task, now, eligible, &result)
		}
	}

	if len(errs) == 0 {
		s.forgetIneligible(eligible)
	}

	s.logger.InfoContext(ctx, "deadline scan finished",
		slog.Int("scanned", result.Scanned),
		slog.Int("approaching", result.Approaching),
		slog.Int("overdue", result.Overdue),
		slog.Int("suppressed", result.Suppressed),
		slog.Duration("duration", s.now().Sub(started)))

	return result, errors.Join(errs...)
}

func (s *Scheduler) consider(ctx context.Context, task *domain.Task, now time.Time, eligible map[uuid.UUID]struct{}, result *ScanResult) {
	state := task.DeadlineState(now, s.cfg.ApproachingWindow)
	var typ domain.NotificationType
	switch state {
	case domain.DeadlineOverdue:
		typ = domain.NotificationTaskOverdue
	case domain.DeadlineApproaching:
		typ = domain.NotificationTaskDeadlineApproaching
	default:
		return
	}
	eligible[task.ID] = struct{}{}

	if !s.shouldNotify(task.ID, notified{state: state, deadline: *task.Deadline}) {
		result.Suppressed++
		return
	}

	if state == domain.DeadlineOverdue {
		result.Overdue++
	} else {
		result.Approaching++
	}
	s.emitter.Emit(ctx, domain.NewTaskNotification(typ, task, now))
}

// shouldNotify records cur for id and reports whether it differs from what
// was last notified.
func (s *Scheduler) shouldNotify(id uuid.UUID, cur notified) bool {
	if s.cfg.RenotifyEveryScan {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.seen[id]
	if ok && prev.state == cur.state && prev.deadline.Equal(cur.deadline) {
		return false
	}
	s.seen[id] = cur
	return true
}

func (s *Scheduler) forgetIneligible(eligible map[uuid.UUID]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.seen {
		if _, ok := eligible[id]; !ok {
			delete(s.seen, id)
		}
	}
}

// Cleanup trims log entries older than the retention period.
func (s *Scheduler) Cleanup() int {
	removed := s.log.TrimOlderThan(s.now().Add(-s.cfg.Retention))
	if removed > 0 {
		s.logger.Info("trimmed notification log", slog.Int("removed", removed))
	}
	return removed
}
