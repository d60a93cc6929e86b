package engine

import "errors"

// Predefined error types for the connection lifecycle
var (
	// ErrInvalidParameters rejects a connect call before any I/O is
	// attempted.
	ErrInvalidParameters = errors.New("invalid connection parameters")
	// ErrAlreadyConnected rejects connect while a connection is active.
	ErrAlreadyConnected = errors.New("already connected")
	// ErrNotConnected rejects send while the link is not open.
	ErrNotConnected = errors.New("not connected")
	// ErrOpenFailed wraps a failed port open. Transient: the caller may
	// retry immediately.
	ErrOpenFailed = errors.New("failed to open port")
	// ErrDeviceLost marks a fatal fault: the device was removed or the
	// handle invalidated. Cleared only by an explicit reset.
	ErrDeviceLost = errors.New("device lost")
	// ErrWriteIncomplete reports a write that could not be completed
	// within the bounded retry budget.
	ErrWriteIncomplete = errors.New("write incomplete")
)
