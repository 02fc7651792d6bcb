package service

import "errors"

var (
	// ErrSyncInProgress is returned by RunSync when another run is active.
	// Triggers should treat it as "nothing to do", not as a failure.
	ErrSyncInProgress = errors.New("sync run already in progress")

	// ErrUnsupportedMethod is returned when an action is enqueued with an
	// HTTP method the sync engine cannot replay.
	ErrUnsupportedMethod = errors.New("unsupported http method")

	// ErrBiometricsNotEnrolled is returned by Enable when the device has no
	// enrolled biometrics to opt in with.
	ErrBiometricsNotEnrolled = errors.New("no enrolled biometrics on device")

	// ErrInvalidSessionToken is returned by ResumeSession for tokens that
	// are malformed, expired, or signed with a different device key.
	ErrInvalidSessionToken = errors.New("invalid session token")
)
