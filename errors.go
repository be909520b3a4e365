package arenaxauth

import "errors"

var (
	// ErrTokenInvalid covers malformed input, signature mismatch under both
	// keys, and a token of the wrong kind for the operation. Terminal, never
	// retried.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned for authentic tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrRefreshTokenExpired is the refresh-path variant of expiry.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	// ErrTokenBlacklisted distinguishes "revoked" from "simply invalid" for
	// client diagnostics.
	ErrTokenBlacklisted = errors.New("token blacklisted")
	// ErrInvalidClaims rejects claims that violate security policy.
	ErrInvalidClaims = errors.New("invalid claims")
	// ErrMaxRefreshExceeded is returned when a refresh token has been
	// exchanged up to the configured limit; the presented token is revoked
	// on the way out.
	ErrMaxRefreshExceeded = errors.New("max refresh count exceeded")
	// ErrSessionNotFound is terminal for session-specific operations but
	// tolerated inside the best-effort touch during validation.
	ErrSessionNotFound = errors.New("session not found")
	// ErrKeyRotationInvalid rejects rotation with empty key material.
	ErrKeyRotationInvalid = errors.New("key rotation rejected")
	// ErrServiceNotReady is returned when a Service method is called on an
	// incompletely constructed instance.
	ErrServiceNotReady = errors.New("service not ready")
)
