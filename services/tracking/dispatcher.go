package tracking

import (
	"context"

	"github.com/piresc/triptrack/internal/pkg/models"
)

// Sink is one subscriber's push channel. Writes to a sink are only ever made
// from a single goroutine.
type Sink interface {
	Send(event models.PositionEvent) error
	KeepAlive() error
}

// Subscription is a live registration of a sink for a trip
type Subscription interface {
	ID() string
	TripID() string
	// Done is closed once the subscription has been removed
	Done() <-chan struct{}
	// Err reports why the subscription ended, nil on client disconnect
	Err() error
}

// StreamDispatcher fans store events out to the sinks watching each trip
type StreamDispatcher interface {
	PositionListener
	Subscribe(ctx context.Context, tripID string, sink Sink) (Subscription, error)
	Subscribers(tripID string) int
	Close()
}
