package domain

import "errors"

// Error taxonomy shared across the safety core. Best-effort paths
// (backend sends, notifications, haptics) never surface these to callers;
// blocking preconditions (permissions, location fetch) always do.
var (
	// ErrPermissionDenied indicates foreground location access was refused.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrLocationUnavailable indicates the platform could not produce a fix.
	ErrLocationUnavailable = errors.New("location unavailable")

	// ErrNetworkFailure indicates a backend or notification call failed.
	// Always non-fatal: callers see it only as a partial-failure flag.
	ErrNetworkFailure = errors.New("network failure")

	// ErrNotFound indicates an unknown alert id.
	ErrNotFound = errors.New("alert not found")

	// ErrInvalidState indicates an illegal state-machine transition that is
	// not covered by a no-op guard.
	ErrInvalidState = errors.New("invalid state transition")
)
