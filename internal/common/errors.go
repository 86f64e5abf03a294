// Package common defines shared constants and sentinel errors used across
// the storymap client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Storage errors: the local store failed. Never swallowed — an enqueue
	// that cannot persist must fail loudly rather than drop user content.
	ErrStorage = errors.New("storage error")

	// Transport errors: network unreachable or the server answered with a
	// failure. Read paths recover locally; write paths surface this
	// per-mutation.
	ErrTransport = errors.New("transport error")

	// Validation errors: the payload is rejected before any network or
	// storage operation is attempted.
	ErrValidation = errors.New("validation error")

	// ErrUnsupported means local persistence is unavailable in the current
	// environment. Detected at initialization; collaborators should disable
	// offline features instead of retrying.
	ErrUnsupported = errors.New("local store unsupported")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenExpired = errors.New("token expired")
)
