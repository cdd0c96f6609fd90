package constants

import "time"

// Tracking defaults
const (
	DefaultStaleAfter        = 5 * time.Minute
	DefaultKeepAliveInterval = 25 * time.Second
	DefaultSubscriberBuffer  = 32

	// StreamRetryMillis is the EventSource reconnect hint sent when a stream opens
	StreamRetryMillis = 3000
)

// Subscriber drop reasons, used as metric labels and log fields
const (
	DropReasonWriteError = "write_error"
	DropReasonOverflow   = "overflow"
	DropReasonShutdown   = "shutdown"
	DropReasonDisconnect = "disconnect"
)
