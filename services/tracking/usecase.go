package tracking

import (
	"context"

	"github.com/piresc/triptrack/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_usecase.go -package=mocks github.com/piresc/triptrack/services/tracking TrackingUC

// TrackingUC defines the public-facing live tracking operations
type TrackingUC interface {
	PublishPosition(ctx context.Context, tripID string, req models.PublishPositionRequest) (*models.PositionEvent, error)
	GetLatestPosition(ctx context.Context, tripID string) (*models.PositionEvent, error)
	EndTracking(ctx context.Context, tripID, reason string) error
	OpenStream(ctx context.Context, tripID string, sink Sink) (Subscription, error)
}
