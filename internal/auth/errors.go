package auth

import "errors"

var (
	ErrNotFound      = errors.New("auth: not found")
	ErrAlreadyExists = errors.New("auth: already exists")
	ErrInvalidInput  = errors.New("auth: invalid input")

	// ErrUnauthorized is the single failure reported for a rejected login or
	// refresh. Unknown username and wrong password deliberately collapse into
	// this one value so callers cannot enumerate accounts.
	ErrUnauthorized = errors.New("auth: username or password may be incorrect")

	// ErrTokenInvalid covers bad structure and bad signatures.
	ErrTokenInvalid = errors.New("auth: invalid token")

	// ErrTokenExpired means the signature checked out but the token is past
	// its expiry.
	ErrTokenExpired = errors.New("auth: token expired")

	// ErrDirectoryUnavailable signals a user-directory lookup failure. It is
	// surfaced as such, never folded into ErrUnauthorized.
	ErrDirectoryUnavailable = errors.New("auth: user directory unavailable")
)
