package models

import "time"

// Coordinates is a latitude/longitude pair in decimal degrees
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TrackedPosition is the latest sample stored for a trip
type TrackedPosition struct {
	Coordinates Coordinates
	Speed       *float64 // km/h, nil when not reported
	Heading     *float64 // degrees in [0,360), nil when not reported
	UpdatedAt   time.Time
}

// PositionEvent is the wire payload for query responses and push events
type PositionEvent struct {
	TripID    string      `json:"tripId"`
	Coords    Coordinates `json:"coords"`
	Speed     *float64    `json:"speed,omitempty"`
	Heading   *float64    `json:"heading,omitempty"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Ended     bool        `json:"ended,omitempty"`
	Reason    string      `json:"reason,omitempty"`
}

// NewPositionEvent builds the wire payload for a stored position
func NewPositionEvent(tripID string, pos TrackedPosition) PositionEvent {
	return PositionEvent{
		TripID:    tripID,
		Coords:    pos.Coordinates,
		Speed:     copyFloat(pos.Speed),
		Heading:   copyFloat(pos.Heading),
		UpdatedAt: pos.UpdatedAt,
	}
}

// NewEndedEvent builds the terminal payload pushed when tracking ends
func NewEndedEvent(tripID string, last TrackedPosition, reason string) PositionEvent {
	event := NewPositionEvent(tripID, last)
	event.Ended = true
	event.Reason = reason
	return event
}

// PublishPositionRequest is the body a driver device posts
type PublishPositionRequest struct {
	Lat     *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng     *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
	Speed   *float64 `json:"speed,omitempty" validate:"omitempty,gte=0"`
	Heading *float64 `json:"heading,omitempty" validate:"omitempty,gte=0,lt=360"`
}

// EndTrackingRequest optionally carries why tracking stopped
type EndTrackingRequest struct {
	Reason string `json:"reason" query:"reason"`
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
