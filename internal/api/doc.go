// Package api contains the HTTP handlers for authentication, tasks,
// notifications and the admin surface. Handlers decode and validate
// requests, call the service layer with the authenticated principal, and
// map service errors to status codes through HandleAPIError. Routing lives
// in cmd/server.
package api
