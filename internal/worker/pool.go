package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// PoolConfig holds configuration options for the worker pool.
type PoolConfig struct {
	// Workers is the number of goroutines; values below 1 mean 1.
	Workers int
	// QueueSize bounds pending jobs; values below 1 mean 1.
	QueueSize int
	// JobTimeout bounds each Run; zero means no timeout.
	JobTimeout time.Duration
}

// Pool consumes jobs from its queue on a fixed set of goroutines.
type Pool struct {
	queue   *Queue
	cfg     PoolConfig
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *slog.Logger
	onError func(job Job, err error)

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewPool creates a pool; call Start before submitting work.
func NewPool(cfg PoolConfig, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "worker_pool")
	if cfg.Workers <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", cfg.Workers,
			"default_count", 1)
		cfg.Workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		queue:  NewQueue(cfg.QueueSize, logger),
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
	p.onError = func(job Job, err error) {
		p.logger.Error("job failed", "job", job.Name(), "error", err)
	}
	return p
}

// SetErrorHandler replaces the default log-only failure handler.
// Call it before Start.
func (p *Pool) SetErrorHandler(fn func(job Job, err error)) {
	p.onError = fn
}

// Submit implements Submitter.
func (p *Pool) Submit(job Job) error {
	return p.queue.Enqueue(job)
}

// Start launches the workers. Calling it more than once has no effect.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		p.logger.Info("starting worker pool", "workers", p.cfg.Workers)
		for i := 0; i < p.cfg.Workers; i++ {
			p.wg.Add(1)
			go p.work(i)
		}
	})
}

// Stop closes the queue, lets workers drain it, and waits for them until
// ctx expires. Jobs still running at that point are cancelled.
func (p *Pool) Stop(ctx context.Context) error {
	var err error
	p.stopOnce.Do(func() {
		p.queue.Close()

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			p.logger.Info("worker pool stopped")
		case <-ctx.Done():
			p.cancel()
			<-done
			err = ctx.Err()
			p.logger.Warn("worker pool stop timed out, cancelled running jobs")
		}
		p.cancel()
	})
	return err
}

func (p *Pool) work(id int) {
	defer p.wg.Done()
	for job := range p.queue.Jobs() {
		p.run(id, job)
	}
}

func (p *Pool) run(id int, job Job) {
	ctx := p.ctx
	if p.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.JobTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("job panicked", "worker", id, "job", job.Name(), "panic", r)
		}
	}()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		p.onError(job, err)
		return
	}
	p.logger.Debug("job completed", "worker", id, "job", job.Name(), "duration", time.Since(start))
}
