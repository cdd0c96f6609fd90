package repository

import (
	"sync"
	"time"

	"github.com/piresc/triptrack/internal/pkg/constants"
	"github.com/piresc/triptrack/internal/pkg/models"
	"github.com/piresc/triptrack/services/tracking"
)

// Option configures a positionStore
type Option func(*positionStore)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *positionStore) {
		s.now = now
	}
}

// WithStaleAfter overrides how long a record stays fresh without a publish
func WithStaleAfter(d time.Duration) Option {
	return func(s *positionStore) {
		if d > 0 {
			s.staleAfter = d
		}
	}
}

// WithMetrics attaches a metrics sink
func WithMetrics(m tracking.Metrics) Option {
	return func(s *positionStore) {
		if m != nil {
			s.metrics = m
		}
	}
}

type positionStore struct {
	mu         sync.Mutex
	positions  map[string]models.TrackedPosition
	listeners  []tracking.PositionListener
	staleAfter time.Duration
	now        func() time.Time
	metrics    tracking.Metrics
}

// NewPositionStore creates an empty in-memory position store
func NewPositionStore(opts ...Option) tracking.PositionStore {
	s := &positionStore{
		positions:  make(map[string]models.TrackedPosition),
		staleAfter: constants.DefaultStaleAfter,
		now:        models.Now,
		metrics:    tracking.NopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *positionStore) AddListener(l tracking.PositionListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Publish stores whatever values it receives; range checks belong to the caller
func (s *positionStore) Publish(tripID string, coords models.Coordinates, speed, heading *float64) models.TrackedPosition {
	pos := models.TrackedPosition{
		Coordinates: coords,
		Speed:       copyFloat(speed),
		Heading:     copyFloat(heading),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos.UpdatedAt = s.now()
	s.positions[tripID] = pos
	for _, l := range s.listeners {
		l.Notify(tripID, pos)
	}
	return pos
}

func (s *positionStore) Get(tripID string) (models.TrackedPosition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lookup(tripID)
}

func (s *positionStore) Clear(tripID, reason string) models.TrackedPosition {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.positions[tripID]
	if ok {
		delete(s.positions, tripID)
	} else {
		// placeholder so waiting subscribers still see the ended signal
		last = models.TrackedPosition{UpdatedAt: s.now()}
	}

	for _, l := range s.listeners {
		l.NotifyEnded(tripID, last, reason)
	}
	return last
}

func (s *positionStore) View(tripID string, fn func(pos *models.TrackedPosition)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.lookup(tripID)
	if !ok {
		fn(nil)
		return
	}
	fn(&pos)
}

func (s *positionStore) PurgeStale() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	purged := 0
	for tripID, pos := range s.positions {
		if s.isStale(pos, now) {
			delete(s.positions, tripID)
			purged++
		}
	}
	if purged > 0 {
		s.metrics.StalePurged(purged)
	}
	return purged
}

func (s *positionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.positions)
}

// lookup must be called with s.mu held
func (s *positionStore) lookup(tripID string) (models.TrackedPosition, bool) {
	pos, ok := s.positions[tripID]
	if !ok {
		return models.TrackedPosition{}, false
	}
	if s.isStale(pos, s.now()) {
		delete(s.positions, tripID)
		s.metrics.StalePurged(1)
		return models.TrackedPosition{}, false
	}
	return pos, true
}

func (s *positionStore) isStale(pos models.TrackedPosition, now time.Time) bool {
	return now.Sub(pos.UpdatedAt) > s.staleAfter
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
