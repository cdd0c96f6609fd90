package usecase

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/piresc/triptrack/internal/pkg/logger"
	"github.com/piresc/triptrack/internal/pkg/models"
	"github.com/piresc/triptrack/internal/utils"
	"github.com/piresc/triptrack/services/tracking"
)

// TrackingUC implements the tracking.TrackingUC interface
type TrackingUC struct {
	store      tracking.PositionStore
	dispatcher tracking.StreamDispatcher
	gateway    tracking.TrackingGW
	metrics    tracking.Metrics
	validate   *validator.Validate
}

// NewTrackingUC creates the tracking use case. gateway and metrics may be nil.
func NewTrackingUC(
	store tracking.PositionStore,
	dispatcher tracking.StreamDispatcher,
	gateway tracking.TrackingGW,
	metrics tracking.Metrics,
) *TrackingUC {
	if metrics == nil {
		metrics = tracking.NopMetrics{}
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &TrackingUC{
		store:      store,
		dispatcher: dispatcher,
		gateway:    gateway,
		metrics:    metrics,
		validate:   validate,
	}
}

// PublishPosition validates a driver sample and stores it
func (uc *TrackingUC) PublishPosition(ctx context.Context, tripID string, req models.PublishPositionRequest) (*models.PositionEvent, error) {
	if err := uc.validateTripID(tripID); err != nil {
		return nil, err
	}
	if err := uc.validatePosition(req); err != nil {
		return nil, err
	}

	coords := models.Coordinates{Lat: *req.Lat, Lng: *req.Lng}
	pos := uc.store.Publish(tripID, coords, req.Speed, req.Heading)
	uc.metrics.PositionPublished()

	event := models.NewPositionEvent(tripID, pos)

	logger.Debug("Position published",
		logger.String("trip_id", tripID),
		logger.String("geohash", utils.EncodeCoordinates(coords, utils.DefaultGeohashPrecision)))

	if uc.gateway != nil {
		if err := uc.gateway.PublishPosition(ctx, event); err != nil {
			logger.Warn("Failed to emit position event",
				logger.String("trip_id", tripID),
				logger.Err(err))
		}
	}

	return &event, nil
}

// GetLatestPosition returns the freshest sample for a trip
func (uc *TrackingUC) GetLatestPosition(ctx context.Context, tripID string) (*models.PositionEvent, error) {
	if err := uc.validateTripID(tripID); err != nil {
		return nil, err
	}

	pos, ok := uc.store.Get(tripID)
	if !ok {
		return nil, tracking.ErrPositionNotFound
	}

	event := models.NewPositionEvent(tripID, pos)
	return &event, nil
}

// EndTracking clears the trip and pushes the ended signal to its watchers
func (uc *TrackingUC) EndTracking(ctx context.Context, tripID, reason string) error {
	if err := uc.validateTripID(tripID); err != nil {
		return err
	}

	last := uc.store.Clear(tripID, reason)
	uc.metrics.TrackingEnded()

	logger.Info("Tracking ended",
		logger.String("trip_id", tripID),
		logger.String("reason", reason))

	if uc.gateway != nil {
		if err := uc.gateway.PublishEnded(ctx, models.NewEndedEvent(tripID, last, reason)); err != nil {
			logger.Warn("Failed to emit tracking ended event",
				logger.String("trip_id", tripID),
				logger.Err(err))
		}
	}

	return nil
}

// OpenStream registers sink as a live watcher of the trip
func (uc *TrackingUC) OpenStream(ctx context.Context, tripID string, sink tracking.Sink) (tracking.Subscription, error) {
	if err := uc.validateTripID(tripID); err != nil {
		return nil, err
	}

	return uc.dispatcher.Subscribe(ctx, tripID, sink)
}

func (uc *TrackingUC) validateTripID(tripID string) error {
	if strings.TrimSpace(tripID) == "" {
		uc.metrics.InputRejected("trip_id")
		return &tracking.ValidationError{Field: "trip_id", Message: "is required"}
	}
	return nil
}

func (uc *TrackingUC) validatePosition(req models.PublishPositionRequest) error {
	err := uc.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &tracking.ValidationError{Field: "body", Message: err.Error()}
	}

	fe := fieldErrs[0]
	uc.metrics.InputRejected(fe.Field())
	return &tracking.ValidationError{Field: fe.Field(), Message: describe(fe)}
}

func describe(fe validator.FieldError) string {
	switch fe.Field() {
	case "lat":
		if fe.Tag() == "required" {
			return "is required"
		}
		return "must be between -90 and 90"
	case "lng":
		if fe.Tag() == "required" {
			return "is required"
		}
		return "must be between -180 and 180"
	case "speed":
		return "must not be negative"
	case "heading":
		return "must be in [0, 360)"
	}
	return "is invalid"
}
