package nats

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/piresc/triptrack/internal/pkg/logger"
)

// ConnectionObserver is told whenever the connection goes up or down
type ConnectionObserver func(connected bool)

// Client wraps a NATS connection used for publishing tracking events
type Client struct {
	conn *nats.Conn
}

// NewClient connects to url. observer may be nil.
func NewClient(url, name string, observer ConnectionObserver) (*Client, error) {
	report := func(connected bool) {
		if observer != nil {
			observer(connected)
		}
	}

	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			report(false)
			logger.Warn("NATS disconnected", logger.Err(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			report(true)
			logger.Info("NATS reconnected", logger.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			report(false)
			logger.Info("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS server: %w", err)
	}

	report(true)
	logger.Info("Connected to NATS", logger.String("url", conn.ConnectedUrl()))

	return &Client{conn: conn}, nil
}

// GetConn returns the underlying connection
func (c *Client) GetConn() *nats.Conn {
	return c.conn
}

// Publish sends a message to the specified subject
func (c *Client) Publish(subject string, data []byte) error {
	if err := c.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the connection
func (c *Client) Close() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Drain(); err != nil {
		logger.Warn("Failed to drain NATS connection", logger.Err(err))
		c.conn.Close()
	}
}
