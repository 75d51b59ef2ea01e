// Package service contains the application use cases. It validates input,
// coordinates the stores defined in internal/store, and raises task events
// for notifications. It never depends on a concrete store implementation.
//
// Error handling:
//   - domain.ValidationError for bad input
//   - store sentinels (ErrTaskNotFound, ErrUserNotFound, ErrUsernameExists)
//     passed through wrapped so errors.Is still matches
//   - auth.ErrInvalidCredentials for failed logins
//   - ServiceError for everything unexpected
package service
