package tracking

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrPositionNotFound   = errors.New("no recent position")
	ErrStreamUnsupported  = errors.New("live stream not supported by this connection")
	ErrDispatcherClosed   = errors.New("stream dispatcher is closed")
	ErrSubscriberOverflow = errors.New("subscriber is not keeping up")
)

// ValidationError describes a client-fixable problem with one input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
