package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/piresc/triptrack/internal/pkg/constants"
	"github.com/piresc/triptrack/internal/pkg/logger"
	"github.com/piresc/triptrack/internal/pkg/models"
	"github.com/piresc/triptrack/services/tracking"
)

// positionViewer is the slice of the position store the dispatcher needs
type positionViewer interface {
	View(tripID string, fn func(pos *models.TrackedPosition))
}

// Option configures a streamDispatcher
type Option func(*streamDispatcher)

// WithKeepAliveInterval sets how often idle sinks receive a keep-alive
func WithKeepAliveInterval(d time.Duration) Option {
	return func(sd *streamDispatcher) {
		if d > 0 {
			sd.keepAlive = d
		}
	}
}

// WithBufferSize sets how many undelivered events a subscriber may hold
// before it is dropped
func WithBufferSize(n int) Option {
	return func(sd *streamDispatcher) {
		if n > 0 {
			sd.bufferSize = n
		}
	}
}

// WithMetrics attaches a metrics sink
func WithMetrics(m tracking.Metrics) Option {
	return func(sd *streamDispatcher) {
		if m != nil {
			sd.metrics = m
		}
	}
}

type streamDispatcher struct {
	mu     sync.Mutex
	subs   map[string]map[string]*subscription // trip id -> subscription id
	closed bool

	store      positionViewer
	keepAlive  time.Duration
	bufferSize int
	metrics    tracking.Metrics
}

// NewStreamDispatcher creates a dispatcher that replays from store on subscribe.
// Register the result as a listener on the same store.
func NewStreamDispatcher(store positionViewer, opts ...Option) tracking.StreamDispatcher {
	sd := &streamDispatcher{
		subs:       make(map[string]map[string]*subscription),
		store:      store,
		keepAlive:  constants.DefaultKeepAliveInterval,
		bufferSize: constants.DefaultSubscriberBuffer,
		metrics:    tracking.NopMetrics{},
	}
	for _, opt := range opts {
		opt(sd)
	}
	return sd
}

// Subscribe registers sink for tripID and replays the latest fresh sample.
// The subscription lives until ctx ends, a write fails, the sink falls
// behind, or the dispatcher is closed.
func (sd *streamDispatcher) Subscribe(ctx context.Context, tripID string, sink tracking.Sink) (tracking.Subscription, error) {
	sub := newSubscription(tripID, sink, sd.bufferSize)

	var err error
	// registration and replay happen under the store's lock so no publish
	// can land between them
	sd.store.View(tripID, func(pos *models.TrackedPosition) {
		sd.mu.Lock()
		defer sd.mu.Unlock()

		if sd.closed {
			err = tracking.ErrDispatcherClosed
			return
		}

		set, ok := sd.subs[tripID]
		if !ok {
			set = make(map[string]*subscription)
			sd.subs[tripID] = set
		}
		set[sub.id] = sub

		if pos != nil {
			sub.queue <- models.NewPositionEvent(tripID, *pos)
		}
	})
	if err != nil {
		return nil, err
	}

	sd.metrics.SubscriberAdded()
	logger.Info("Subscriber registered",
		logger.String("trip_id", tripID),
		logger.String("subscription_id", sub.id))

	go sd.pump(ctx, sub)

	return sub, nil
}

func (sd *streamDispatcher) Notify(tripID string, pos models.TrackedPosition) {
	sd.fanOut(tripID, models.NewPositionEvent(tripID, pos))
}

// NotifyEnded pushes the terminal event; sinks stay open until the client leaves
func (sd *streamDispatcher) NotifyEnded(tripID string, last models.TrackedPosition, reason string) {
	sd.fanOut(tripID, models.NewEndedEvent(tripID, last, reason))
}

func (sd *streamDispatcher) Subscribers(tripID string) int {
	sd.mu.Lock()
	defer sd.mu.Unlock()
	return len(sd.subs[tripID])
}

// Close drops every subscription and rejects new ones
func (sd *streamDispatcher) Close() {
	sd.mu.Lock()
	if sd.closed {
		sd.mu.Unlock()
		return
	}
	sd.closed = true
	var all []*subscription
	for _, set := range sd.subs {
		for _, sub := range set {
			all = append(all, sub)
		}
	}
	sd.subs = make(map[string]map[string]*subscription)
	sd.mu.Unlock()

	for _, sub := range all {
		sub.terminate(tracking.ErrDispatcherClosed)
		sd.metrics.SubscriberRemoved(constants.DropReasonShutdown)
	}
	logger.Info("Stream dispatcher closed", logger.Int("subscriptions", len(all)))
}

func (sd *streamDispatcher) fanOut(tripID string, event models.PositionEvent) {
	var lagging []*subscription

	sd.mu.Lock()
	for _, sub := range sd.subs[tripID] {
		select {
		case sub.queue <- event:
		default:
			lagging = append(lagging, sub)
		}
	}
	sd.mu.Unlock()

	for _, sub := range lagging {
		logger.Warn("Dropping subscriber that is not keeping up",
			logger.String("trip_id", tripID),
			logger.String("subscription_id", sub.id),
			logger.Int("buffer_size", sd.bufferSize))
		sd.remove(sub, tracking.ErrSubscriberOverflow, constants.DropReasonOverflow)
	}
}

// pump owns every write to the subscription's sink
func (sd *streamDispatcher) pump(ctx context.Context, sub *subscription) {
	defer close(sub.done)

	ticker := time.NewTicker(sd.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sd.remove(sub, nil, constants.DropReasonDisconnect)
			return
		case <-sub.stop:
			return
		case event := <-sub.queue:
			if err := sub.sink.Send(event); err != nil {
				sd.dropOnWriteError(sub, "send", err)
				return
			}
		case <-ticker.C:
			if err := sub.sink.KeepAlive(); err != nil {
				sd.dropOnWriteError(sub, "keep-alive", err)
				return
			}
			sd.metrics.KeepAliveSent()
		}
	}
}

func (sd *streamDispatcher) dropOnWriteError(sub *subscription, op string, err error) {
	logger.Warn("Subscriber write failed, removing",
		logger.String("trip_id", sub.tripID),
		logger.String("subscription_id", sub.id),
		logger.String("op", op),
		logger.Err(err))
	sd.remove(sub, fmt.Errorf("%s: %w", op, err), constants.DropReasonWriteError)
}

func (sd *streamDispatcher) remove(sub *subscription, cause error, reason string) {
	removed := false

	sd.mu.Lock()
	if set, ok := sd.subs[sub.tripID]; ok {
		if _, ok := set[sub.id]; ok {
			delete(set, sub.id)
			removed = true
			if len(set) == 0 {
				delete(sd.subs, sub.tripID)
			}
		}
	}
	sd.mu.Unlock()

	sub.terminate(cause)
	if removed {
		sd.metrics.SubscriberRemoved(reason)
		logger.Info("Subscriber removed",
			logger.String("trip_id", sub.tripID),
			logger.String("subscription_id", sub.id),
			logger.String("reason", reason))
	}
}

type subscription struct {
	id     string
	tripID string
	sink   tracking.Sink
	queue  chan models.PositionEvent

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	mu  sync.Mutex
	err error
}

func newSubscription(tripID string, sink tracking.Sink, bufferSize int) *subscription {
	return &subscription{
		id:     uuid.NewString(),
		tripID: tripID,
		sink:   sink,
		queue:  make(chan models.PositionEvent, bufferSize),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (s *subscription) ID() string {
	return s.id
}

func (s *subscription) TripID() string {
	return s.tripID
}

func (s *subscription) Done() <-chan struct{} {
	return s.done
}

func (s *subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *subscription) terminate(cause error) {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.err = cause
		s.mu.Unlock()
		close(s.stop)
	})
}
