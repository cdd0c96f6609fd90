package health

import (
	"context"
	"errors"
	"net/http"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/piresc/triptrack/internal/pkg/logger"
	natspkg "github.com/piresc/triptrack/internal/pkg/nats"
)

const readinessTimeout = 3 * time.Second

// BuildInfo contains information about the build
type BuildInfo struct {
	Version     string    `json:"version"`
	GitCommit   string    `json:"git_commit"`
	BuildTime   string    `json:"build_time"`
	ServiceName string    `json:"service_name"`
	GoVersion   string    `json:"go_version"`
	Hostname    string    `json:"hostname"`
	ServerTime  time.Time `json:"server_time"`
}

// DefaultBuildInfo contains default build information
var DefaultBuildInfo = BuildInfo{
	Version:   "development",
	GitCommit: "unknown",
	BuildTime: "unknown",
	GoVersion: runtime.Version(),
}

// Checker reports whether one dependency is usable
type Checker interface {
	CheckHealth(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) CheckHealth(ctx context.Context) error {
	return f(ctx)
}

// NATSChecker fails while the event bus connection is down
type NATSChecker struct {
	client *natspkg.Client
}

// NewNATSChecker creates a checker for client; a nil client is always healthy
func NewNATSChecker(client *natspkg.Client) *NATSChecker {
	return &NATSChecker{client: client}
}

func (n *NATSChecker) CheckHealth(ctx context.Context) error {
	if n.client == nil {
		return nil
	}
	if conn := n.client.GetConn(); conn == nil || !conn.IsConnected() {
		return errors.New("NATS not connected")
	}
	return nil
}

// DependencyInfo represents health info for a dependency
type DependencyInfo struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ReadinessResponse is returned by /ready
type ReadinessResponse struct {
	Status       string                    `json:"status"`
	Service      string                    `json:"service"`
	Timestamp    time.Time                 `json:"timestamp"`
	Dependencies map[string]DependencyInfo `json:"dependencies,omitempty"`
}

// NewPingHandler creates a handler for the ping endpoint
func NewPingHandler(serviceName, version string) echo.HandlerFunc {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	buildInfo := DefaultBuildInfo
	buildInfo.ServiceName = serviceName
	buildInfo.Hostname = hostname
	if version != "" {
		buildInfo.Version = version
	}
	if gitCommit := os.Getenv("GIT_COMMIT"); gitCommit != "" {
		buildInfo.GitCommit = gitCommit
	}
	if buildTime := os.Getenv("BUILD_TIME"); buildTime != "" {
		buildInfo.BuildTime = buildTime
	}

	return func(c echo.Context) error {
		info := buildInfo
		info.ServerTime = time.Now()
		return c.JSON(http.StatusOK, info)
	}
}

// NewReadyHandler runs every checker and answers 503 if any fails
func NewReadyHandler(serviceName string, checkers map[string]Checker) echo.HandlerFunc {
	names := make([]string, 0, len(checkers))
	for name := range checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
		defer cancel()

		resp := ReadinessResponse{
			Status:       "ready",
			Service:      serviceName,
			Timestamp:    time.Now(),
			Dependencies: make(map[string]DependencyInfo, len(names)),
		}

		for _, name := range names {
			if err := checkers[name].CheckHealth(ctx); err != nil {
				logger.Warn("Readiness check failed",
					logger.String("dependency", name),
					logger.Err(err))
				resp.Dependencies[name] = DependencyInfo{Status: "unhealthy", Error: err.Error()}
				resp.Status = "unavailable"
				continue
			}
			resp.Dependencies[name] = DependencyInfo{Status: "healthy"}
		}

		if resp.Status != "ready" {
			return c.JSON(http.StatusServiceUnavailable, resp)
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// RegisterHealthEndpoints registers the health check endpoints
func RegisterHealthEndpoints(e *echo.Echo, serviceName, version string, checkers map[string]Checker) {
	e.GET("/ping", NewPingHandler(serviceName, version))

	ok := func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	}
	e.GET("/health", ok)
	e.GET("/healthz", ok)

	e.GET("/ready", NewReadyHandler(serviceName, checkers))
}
