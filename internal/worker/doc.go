// Package worker runs background jobs on a fixed pool of goroutines fed by a
// bounded queue. Submitting never blocks: a full queue rejects the job.
package worker
