// Package notification records task notifications and delivers them.
//
// A Notifier appends each notification to a Log and hands delivery to
// Dispatchers on a worker pool, so callers never wait on mail or a broker.
// The Scheduler periodically scans open tasks with deadlines and emits
// approaching and overdue notifications through the same Notifier.
package notification
