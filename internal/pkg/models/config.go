package models

// Config represents application configuration
type Config struct {
	App      AppConfig
	Server   ServerConfig
	NATS     NATSConfig
	JWT      JWTConfig
	NewRelic NewRelicConfig
	Logger   LoggerConfig
	Tracking TrackingConfig
	Metrics  MetricsConfig
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout int // in seconds
}

// NATSConfig contains NATS connection configuration
type NATSConfig struct {
	URL string
}

// JWTConfig contains JWT validation configuration. Tokens are issued by the
// auth service; this service only verifies them.
type JWTConfig struct {
	Secret string
	Issuer string
}

// NewRelicConfig contains New Relic agent configuration
type NewRelicConfig struct {
	Enabled     bool
	LicenseKey  string
	AppName     string
	ForwardLogs bool
}

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level    string
	FilePath string
}

// TrackingConfig tunes the live position tracker. Durations are in seconds.
type TrackingConfig struct {
	StaleAfter        int
	KeepAliveInterval int
	SubscriberBuffer  int
	SweepInterval     int // 0 keeps expiry lazy-only
}

// MetricsConfig contains Prometheus exposition configuration
type MetricsConfig struct {
	Enabled bool
	Path    string
}
