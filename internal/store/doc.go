// Package store defines the persistence contracts for tasks and users and
// the sentinel errors every implementation returns. Postgres and in-memory
// implementations live under internal/platform.
package store
