package worker

import "context"

// Job is a unit of background work.
type Job interface {
	// Name identifies the job kind in logs.
	Name() string
	// Run performs the work; ctx carries the per-job timeout.
	Run(ctx context.Context) error
}

// JobFunc adapts a function to Job.
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

// Name implements Job.
func (f JobFunc) Name() string { return f.JobName }

// Run implements Job.
func (f JobFunc) Run(ctx context.Context) error { return f.Fn(ctx) }

// Submitter accepts jobs for asynchronous execution.
type Submitter interface {
	Submit(job Job) error
}
