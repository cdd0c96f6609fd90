package tracking

import (
	"github.com/piresc/triptrack/internal/pkg/models"
)

// PositionStore holds the latest position sample per trip
type PositionStore interface {
	// Publish replaces the record for tripID, stamps it and notifies listeners
	Publish(tripID string, coords models.Coordinates, speed, heading *float64) models.TrackedPosition
	// Get returns the current record, purging it first if it is stale
	Get(tripID string) (models.TrackedPosition, bool)
	// Clear removes the record and notifies listeners with an ended signal.
	// It returns the last known position, zero-valued when there was none.
	Clear(tripID, reason string) models.TrackedPosition
	// View runs fn with the current non-stale record (nil if absent) while
	// no publish or clear can interleave. fn must not call back into the store.
	View(tripID string, fn func(pos *models.TrackedPosition))
	// PurgeStale drops every stale record and reports how many were removed
	PurgeStale() int
	// Len reports how many records are held, stale ones included
	Len() int
	// AddListener registers l for every subsequent publish and clear
	AddListener(l PositionListener)
}

// PositionListener receives store events. Calls are made synchronously in
// store processing order and must not block.
type PositionListener interface {
	Notify(tripID string, pos models.TrackedPosition)
	NotifyEnded(tripID string, last models.TrackedPosition, reason string)
}
