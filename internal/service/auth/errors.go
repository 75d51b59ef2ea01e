package auth

import "errors"

var (
	// ErrInvalidToken covers malformed tokens, bad signatures and
	// unexpected signing methods.
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token expired")
	ErrTokenNotYetValid = errors.New("token not yet valid")

	// ErrInvalidCredentials does not say whether the username or the
	// password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
