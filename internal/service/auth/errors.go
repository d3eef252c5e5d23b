package auth

import "errors"

// Token validation errors. The middleware switches on these to pick the
// response status and message.
var (
	// ErrInvalidToken covers malformed tokens, unexpected signing methods
	// and signature mismatches.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken is returned when the exp claim lies in the past,
	// beyond the configured clock skew.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid is returned when the nbf claim lies in the future.
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken is returned when a request carries no credentials
	// at all.
	ErrMissingToken = errors.New("authentication token is missing")
)
