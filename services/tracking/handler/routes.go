package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/piresc/triptrack/internal/pkg/middleware"
	"github.com/piresc/triptrack/internal/pkg/models"
	"github.com/piresc/triptrack/services/tracking"
	httpHandler "github.com/piresc/triptrack/services/tracking/handler/http"
	wsHandler "github.com/piresc/triptrack/services/tracking/handler/websocket"
)

// HTTPHandler combines all handlers for the tracking service
type HTTPHandler struct {
	trackingHTTP *httpHandler.TrackingHandler
	trackingWS   *wsHandler.StreamHandler
	cfg          *models.Config
}

// NewHTTPHandler creates a new combined handler
func NewHTTPHandler(trackingUC tracking.TrackingUC, cfg *models.Config) *HTTPHandler {
	return &HTTPHandler{
		trackingHTTP: httpHandler.NewTrackingHandler(trackingUC),
		trackingWS:   wsHandler.NewStreamHandler(trackingUC),
		cfg:          cfg,
	}
}

// RegisterRoutes registers all tracking routes
func (h *HTTPHandler) RegisterRoutes(e *echo.Echo) {
	var mws []echo.MiddlewareFunc
	if h.cfg.JWT.Secret != "" {
		mws = append(mws, middleware.JWTAuthMiddleware(h.cfg.JWT))
	}

	trips := e.Group("/api/v1/trips/:id/position", mws...)

	trips.POST("", h.trackingHTTP.PublishPosition)
	trips.GET("", h.trackingHTTP.GetPosition)
	trips.DELETE("", h.trackingHTTP.EndTracking)

	// Live streams
	trips.GET("/stream", h.trackingHTTP.StreamPosition)
	trips.GET("/ws", h.trackingWS.StreamPosition)
}
