package http

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/piresc/triptrack/internal/pkg/models"
)

const mimeEventStream = "text/event-stream"

// sseSink frames events as text/event-stream. The response is committed on
// the first write so a failed subscribe can still answer with JSON.
type sseSink struct {
	mu          sync.Mutex
	res         *echo.Response
	retryMillis int
	started     bool
}

func newSSESink(res *echo.Response, retryMillis int) *sseSink {
	return &sseSink{res: res, retryMillis: retryMillis}
}

func (s *sseSink) start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked()
}

func (s *sseSink) startLocked() error {
	if s.started {
		return nil
	}
	s.started = true

	header := s.res.Header()
	header.Set(echo.HeaderContentType, mimeEventStream)
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	s.res.WriteHeader(http.StatusOK)

	if s.retryMillis > 0 {
		if _, err := fmt.Fprintf(s.res, "retry: %d\n\n", s.retryMillis); err != nil {
			return err
		}
	}
	s.res.Flush()
	return nil
}

func (s *sseSink) Send(event models.PositionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return s.write("data: " + string(data) + "\n\n")
}

func (s *sseSink) KeepAlive() error {
	return s.write(": keep-alive\n\n")
}

func (s *sseSink) write(frame string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.startLocked(); err != nil {
		return err
	}
	if _, err := s.res.Write([]byte(frame)); err != nil {
		return err
	}
	s.res.Flush()
	return nil
}

// acceptsEventStream is lenient: an absent Accept header or a wildcard is fine
func acceptsEventStream(r *http.Request) bool {
	accept := r.Header.Get(echo.HeaderAccept)
	if accept == "" {
		return true
	}
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mediaType {
		case mimeEventStream, "text/*", "*/*":
			return true
		}
	}
	return false
}

func canFlush(w http.ResponseWriter) bool {
	for {
		if _, ok := w.(http.Flusher); ok {
			return true
		}
		u, ok := w.(interface{ Unwrap() http.ResponseWriter })
		if !ok {
			return false
		}
		w = u.Unwrap()
	}
}
