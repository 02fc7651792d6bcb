package adapter

import "errors"

var (
	// ErrUnauthorized is returned for 401 responses. It is a permanent
	// failure from the queue's perspective: replaying the same request will
	// not succeed until the shell re-authenticates.
	ErrUnauthorized = errors.New("client unauthorized")

	// ErrTransient marks failures worth retrying: network errors, timeouts
	// and 5xx responses.
	ErrTransient = errors.New("transient remote failure")

	// ErrPermanent marks failures that must not be retried: 4xx responses
	// indicating the request itself is invalid.
	ErrPermanent = errors.New("permanent remote failure")
)
