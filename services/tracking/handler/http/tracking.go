package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/piresc/triptrack/internal/pkg/constants"
	"github.com/piresc/triptrack/internal/pkg/logger"
	"github.com/piresc/triptrack/internal/pkg/models"
	nr "github.com/piresc/triptrack/internal/pkg/newrelic"
	"github.com/piresc/triptrack/internal/utils"
	"github.com/piresc/triptrack/services/tracking"
)

// TrackingHandler handles HTTP requests for live trip tracking
type TrackingHandler struct {
	trackingUC  tracking.TrackingUC
	retryMillis int
}

// NewTrackingHandler creates a new tracking HTTP handler
func NewTrackingHandler(trackingUC tracking.TrackingUC) *TrackingHandler {
	return &TrackingHandler{
		trackingUC:  trackingUC,
		retryMillis: constants.StreamRetryMillis,
	}
}

// PublishPosition accepts a position sample from the driver's device
func (h *TrackingHandler) PublishPosition(c echo.Context) error {
	tripID := c.Param("id")
	nr.AddTransactionAttribute(c.Request().Context(), "trip.id", tripID)

	var req models.PublishPositionRequest
	if err := c.Bind(&req); err != nil {
		logger.Debug("Failed to bind position request",
			logger.String("trip_id", tripID),
			logger.Err(err))
		return utils.BadRequestResponse(c, "invalid request body")
	}

	event, err := h.trackingUC.PublishPosition(c.Request().Context(), tripID, req)
	if err != nil {
		return h.errorResponse(c, tripID, err)
	}

	return c.JSON(http.StatusOK, event)
}

// GetPosition returns the latest non-stale sample of a trip
func (h *TrackingHandler) GetPosition(c echo.Context) error {
	tripID := c.Param("id")
	nr.AddTransactionAttribute(c.Request().Context(), "trip.id", tripID)

	event, err := h.trackingUC.GetLatestPosition(c.Request().Context(), tripID)
	if err != nil {
		return h.errorResponse(c, tripID, err)
	}

	return c.JSON(http.StatusOK, event)
}

// EndTracking stops tracking a trip. The reason comes from ?reason= or a JSON body.
func (h *TrackingHandler) EndTracking(c echo.Context) error {
	tripID := c.Param("id")
	nr.AddTransactionAttribute(c.Request().Context(), "trip.id", tripID)

	var req models.EndTrackingRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "invalid request body")
	}

	if err := h.trackingUC.EndTracking(c.Request().Context(), tripID, req.Reason); err != nil {
		return h.errorResponse(c, tripID, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Tracking ended", map[string]string{
		"tripId": tripID,
		"reason": req.Reason,
	})
}

// StreamPosition holds the request open as a server-sent event stream
func (h *TrackingHandler) StreamPosition(c echo.Context) error {
	tripID := c.Param("id")

	if !acceptsEventStream(c.Request()) {
		return utils.ErrorResponseHandler(c, http.StatusNotAcceptable, "stream requires Accept: text/event-stream")
	}
	if !canFlush(c.Response().Writer) {
		logger.Error("Streaming unsupported by response writer", logger.String("trip_id", tripID))
		return utils.InternalServerErrorResponse(c, tracking.ErrStreamUnsupported.Error())
	}

	ctx := c.Request().Context()
	nr.IgnoreTransaction(ctx)
	sink := newSSESink(c.Response(), h.retryMillis)

	sub, err := h.trackingUC.OpenStream(ctx, tripID, sink)
	if err != nil {
		return h.errorResponse(c, tripID, err)
	}

	if err := sink.start(); err != nil {
		logger.Warn("Failed to open event stream",
			logger.String("trip_id", tripID),
			logger.Err(err))
	}

	// the pump owns the writer until Done closes
	<-sub.Done()

	logger.Debug("Event stream closed",
		logger.String("trip_id", tripID),
		logger.String("subscription_id", sub.ID()),
		logger.Err(sub.Err()))
	return nil
}

func (h *TrackingHandler) errorResponse(c echo.Context, tripID string, err error) error {
	var verr *tracking.ValidationError
	switch {
	case errors.As(err, &verr):
		return utils.BadRequestResponse(c, verr.Error())
	case errors.Is(err, tracking.ErrInvalidInput):
		return utils.BadRequestResponse(c, err.Error())
	case errors.Is(err, tracking.ErrPositionNotFound):
		logger.Debug("No recent position", logger.String("trip_id", tripID))
		return utils.NotFoundResponse(c, tracking.ErrPositionNotFound.Error())
	case errors.Is(err, tracking.ErrDispatcherClosed):
		return utils.ErrorResponseHandler(c, http.StatusServiceUnavailable, "service is shutting down")
	}

	logger.Error("Tracking request failed",
		logger.String("trip_id", tripID),
		logger.Err(err))
	return utils.InternalServerErrorResponse(c, "")
}
