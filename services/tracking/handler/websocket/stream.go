package websocket

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/piresc/triptrack/internal/pkg/constants"
	"github.com/piresc/triptrack/internal/pkg/logger"
	"github.com/piresc/triptrack/internal/pkg/models"
	nr "github.com/piresc/triptrack/internal/pkg/newrelic"
	"github.com/piresc/triptrack/internal/utils"
	"github.com/piresc/triptrack/services/tracking"
)

// StreamHandler serves the live position stream over WebSocket
type StreamHandler struct {
	trackingUC tracking.TrackingUC
	upgrader   ws.Upgrader
}

// NewStreamHandler creates a WebSocket stream handler
func NewStreamHandler(trackingUC tracking.TrackingUC) *StreamHandler {
	return &StreamHandler{
		trackingUC: trackingUC,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Passengers connect from mobile apps and web clients
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// StreamPosition upgrades the request and pushes every event for the trip
// as a JSON text frame until either side goes away
func (h *StreamHandler) StreamPosition(c echo.Context) error {
	tripID := c.Param("id")
	if strings.TrimSpace(tripID) == "" {
		return utils.BadRequestResponse(c, "trip_id is required")
	}

	nr.IgnoreTransaction(c.Request().Context())

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already replied
		logger.Warn("WebSocket upgrade failed",
			logger.String("trip_id", tripID),
			logger.Err(err))
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	sub, err := h.trackingUC.OpenStream(ctx, tripID, &wsSink{conn: conn})
	if err != nil {
		_ = conn.SetWriteDeadline(time.Now().Add(constants.WSWriteWait))
		_ = conn.WriteJSON(models.WSErrorMessage{Code: errorCode(err), Message: err.Error()})
		closeWith(conn, closeCode(err), err.Error())
		return nil
	}

	logger.Info("WebSocket client connected",
		logger.String("trip_id", tripID),
		logger.String("subscription_id", sub.ID()))

	go readUntilClosed(conn, cancel)

	<-sub.Done()

	if err := sub.Err(); err != nil {
		closeWith(conn, closeCode(err), constants.WSCloseReasonDropped)
	}

	logger.Info("WebSocket client disconnected",
		logger.String("trip_id", tripID),
		logger.String("subscription_id", sub.ID()),
		logger.Err(sub.Err()))
	return nil
}

// readUntilClosed discards client frames so control frames get processed and
// a closed connection cancels the stream
func readUntilClosed(conn *ws.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(constants.WSMaxMessageSize)
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func closeCode(err error) int {
	switch {
	case errors.Is(err, tracking.ErrDispatcherClosed):
		return ws.CloseGoingAway
	case errors.Is(err, tracking.ErrSubscriberOverflow):
		return ws.CloseTryAgainLater
	case errors.Is(err, tracking.ErrInvalidInput):
		return ws.ClosePolicyViolation
	}
	return ws.CloseInternalServerErr
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, tracking.ErrDispatcherClosed):
		return constants.WSErrorShuttingDown
	case errors.Is(err, tracking.ErrInvalidInput):
		return constants.WSErrorInvalidInput
	}
	return constants.WSErrorInternal
}

func closeWith(conn *ws.Conn, code int, reason string) {
	msg := ws.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(ws.CloseMessage, msg, time.Now().Add(constants.WSWriteWait))
}

// wsSink writes from the dispatcher's pump goroutine only
type wsSink struct {
	conn *ws.Conn
}

func (s *wsSink) Send(event models.PositionEvent) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(constants.WSWriteWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(event)
}

func (s *wsSink) KeepAlive() error {
	return s.conn.WriteControl(ws.PingMessage, nil, time.Now().Add(constants.WSWriteWait))
}
