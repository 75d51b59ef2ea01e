// Package auth issues and validates HS256 access tokens carrying the user's
// id and role, and hashes passwords with bcrypt.
package auth
