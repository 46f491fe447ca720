package common

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned when required credentials are missing from
	// the client configuration.  It is fatal and never retried.
	ErrConfiguration = errors.New(`missing required configuration`)
	// ErrAuthFailed is returned when the cloud service rejects the supplied
	// credentials
	ErrAuthFailed = errors.New(`authentication rejected`)
	// ErrRetriesExceeded is returned when the shared attempt counter passes
	// the configured maximum.  The counter is reset when this fires, so
	// subsequent calls start with a fresh budget.
	ErrRetriesExceeded = errors.New(`maximum retries, giving up`)
	// ErrSessionExpired indicates the service reported our session key as
	// invalid.  Internal to the engine - in-flight calls are abandoned and
	// the next operation re-authenticates.
	ErrSessionExpired = errors.New(`session expired`)
	// ErrAbandoned indicates a call was dropped after a transport failure,
	// relying on the next poll cycle to retry
	ErrAbandoned = errors.New(`request abandoned`)
	// ErrTelemetryNotReady is returned by attribute operations before every
	// known appliance has a telemetry snapshot
	ErrTelemetryNotReady = errors.New(`telemetry not yet populated`)
	// ErrAttributeNotFound is returned when an appliance's telemetry has no
	// entry for the requested attribute code
	ErrAttributeNotFound = errors.New(`attribute not found in telemetry`)
	// ErrNotFound is returned when an appliance lookup fails
	ErrNotFound = errors.New(`appliance not found`)
	// ErrClosed is returned on operations against a closed client or
	// subscription
	ErrClosed = errors.New(`closed`)
	// ErrTimeout is returned when an operation exceeds its deadline
	ErrTimeout = errors.New(`timed out`)
)

// StatusError reports a non-2xx HTTP response from the cloud service
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf(`%d %s`, e.Code, e.Message)
}
