package constants

import "time"

// WebSocket stream settings
const (
	WSWriteWait      = 10 * time.Second
	WSMaxMessageSize = 512

	// Close reason sent when a stream is dropped by the server
	WSCloseReasonDropped = "stream closed by server"
)

// Error codes sent in a WSErrorMessage before the server closes a stream it
// could not open
const (
	WSErrorInvalidInput = "invalid_input"
	WSErrorShuttingDown = "shutting_down"
	WSErrorInternal     = "internal_error"
)
