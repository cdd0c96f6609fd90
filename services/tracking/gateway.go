package tracking

import (
	"context"

	"github.com/piresc/triptrack/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks github.com/piresc/triptrack/services/tracking TrackingGW

// TrackingGW emits tracking events to downstream collaborators
type TrackingGW interface {
	// PublishPosition announces an accepted position sample
	PublishPosition(ctx context.Context, event models.PositionEvent) error
	// PublishEnded announces that tracking for a trip has ended
	PublishEnded(ctx context.Context, event models.PositionEvent) error
}
