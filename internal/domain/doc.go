// Package domain defines the core business entities of the task manager:
// tasks and the queries over them, users and their roles, and the
// notifications emitted about tasks.
//
// Entities validate themselves and report bad input as *ValidationError,
// which wraps ErrValidation so callers can branch with errors.Is.
package domain
