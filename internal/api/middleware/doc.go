// Package middleware contains the HTTP middleware specific to this API:
// bearer-token authentication, role guards and trace IDs.
package middleware
