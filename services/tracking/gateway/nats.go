package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/piresc/triptrack/internal/pkg/constants"
	"github.com/piresc/triptrack/internal/pkg/models"
	nr "github.com/piresc/triptrack/internal/pkg/newrelic"
	"github.com/piresc/triptrack/services/tracking"
)

type trackingGW struct {
	nc *nats.Conn
}

// NewTrackingGW creates a gateway that emits tracking events over NATS
func NewTrackingGW(nc *nats.Conn) tracking.TrackingGW {
	return &trackingGW{
		nc: nc,
	}
}

// PublishPosition publishes an accepted sample on tracking.position.<tripId>
func (g *trackingGW) PublishPosition(ctx context.Context, event models.PositionEvent) error {
	return g.publish(ctx, positionSubject(event.TripID), event)
}

// PublishEnded publishes the terminal event on tracking.ended.<tripId>
func (g *trackingGW) PublishEnded(ctx context.Context, event models.PositionEvent) error {
	return g.publish(ctx, endedSubject(event.TripID), event)
}

func (g *trackingGW) publish(ctx context.Context, subject string, event models.PositionEvent) error {
	if seg := nr.StartNATSProducerSegment(ctx, subject); seg != nil {
		defer seg.End()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal tracking event: %w", err)
	}

	if err := g.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

func positionSubject(tripID string) string {
	return constants.SubjectTrackingPosition + "." + subjectToken(tripID)
}

func endedSubject(tripID string) string {
	return constants.SubjectTrackingEnded + "." + subjectToken(tripID)
}

var tokenReplacer = strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "\t", "_")

// subjectToken makes an opaque trip id safe to use as a single subject token
func subjectToken(s string) string {
	s = tokenReplacer.Replace(strings.TrimSpace(s))
	if s == "" {
		return "_"
	}
	return s
}
