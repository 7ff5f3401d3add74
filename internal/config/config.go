// Package config provides environment-based configuration loading
// for all services in the monorepo.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Base holds configuration common to every service.
type Base struct {
	Port     int
	LogLevel string
	DBPath   string
}

// Edge holds configuration for the edge ingestion pipeline.
type Edge struct {
	Base
	BrokerURL      string
	ClientID       string
	Topic          string
	QueueSize      int
	AlertField     string
	AlertDirection string
	AlertThreshold float64
	WriteRetries   int
	WriteBackoff   time.Duration
	ConnectBackoff time.Duration
	ConnectMaxWait time.Duration
}

// Simulator holds configuration for the telemetry simulator.
type Simulator struct {
	Base
	BrokerURL string
	ClientID  string
	Topic     string
	CSVPath   string
	DeviceID  string
	Interval  time.Duration
	MaxRows   int
	Loop      bool
}

// Viewer holds configuration for the terminal viewer.
type Viewer struct {
	Base
	DeviceID   string
	Refresh    time.Duration
	LastRows   int
	RateWindow time.Duration
}

// Plot holds configuration for the terminal plot utility.
type Plot struct {
	Base
	DeviceID string
	Metric   string
	Limit    int
	Window   int
	DedupTS  bool
}

// Dashboard holds configuration for the web dashboard service.
type Dashboard struct {
	Base
	PageLimit int
}

// LoadBase reads the common configuration from environment variables.
func LoadBase(defaultPort int) Base {
	return Base{
		Port:     GetEnvInt("PORT", defaultPort),
		LogLevel: GetEnv("LOG_LEVEL", "info"),
		DBPath:   GetEnv("DB_PATH", "storage/iot.db"),
	}
}

// LoadEdge returns the edge pipeline configuration.
func LoadEdge() Edge {
	return Edge{
		Base:           LoadBase(8081),
		BrokerURL:      GetEnv("MQTT_BROKER", "tcp://localhost:1883"),
		ClientID:       GetEnv("MQTT_CLIENT_ID", "edge"),
		Topic:          GetEnv("MQTT_TOPIC", "greenhouse/telemetry"),
		QueueSize:      GetEnvInt("EDGE_QUEUE_SIZE", 256),
		AlertField:     GetEnv("ALERT_FIELD", "humidity"),
		AlertDirection: GetEnv("ALERT_DIRECTION", "above"),
		AlertThreshold: GetEnvFloat("ALERT_THRESHOLD", 50.0),
		WriteRetries:   GetEnvInt("WRITE_RETRIES", 3),
		WriteBackoff:   GetEnvDuration("WRITE_BACKOFF", 50*time.Millisecond),
		ConnectBackoff: GetEnvDuration("CONNECT_BACKOFF", 1*time.Second),
		ConnectMaxWait: GetEnvDuration("CONNECT_MAX_WAIT", 30*time.Second),
	}
}

// LoadSimulator returns the simulator configuration.
func LoadSimulator() Simulator {
	return Simulator{
		Base:      LoadBase(8082),
		BrokerURL: GetEnv("MQTT_BROKER", "tcp://localhost:1883"),
		ClientID:  GetEnv("MQTT_CLIENT_ID", "simulator"),
		Topic:     GetEnv("MQTT_TOPIC", "greenhouse/telemetry"),
		CSVPath:   GetEnv("SIM_CSV_PATH", "samples/greenhouse.csv"),
		DeviceID:  GetEnv("SIM_DEVICE_ID", "gh_01"),
		Interval:  GetEnvDuration("SIM_INTERVAL", 1*time.Second),
		MaxRows:   GetEnvInt("SIM_MAX_ROWS", 30000),
		Loop:      GetEnvBool("SIM_LOOP", false),
	}
}

// LoadViewer returns the terminal viewer configuration.
func LoadViewer() Viewer {
	return Viewer{
		Base:       LoadBase(0),
		DeviceID:   GetEnv("VIEWER_DEVICE_ID", "gh_01"),
		Refresh:    GetEnvDuration("VIEWER_REFRESH", 1*time.Second),
		LastRows:   GetEnvInt("VIEWER_LAST_ROWS", 10),
		RateWindow: GetEnvDuration("VIEWER_RATE_WINDOW", 60*time.Second),
	}
}

// LoadPlot returns the plot utility configuration.
func LoadPlot() Plot {
	return Plot{
		Base:     LoadBase(0),
		DeviceID: GetEnv("PLOT_DEVICE_ID", "gh_01"),
		Metric:   GetEnv("PLOT_METRIC", "humidity"),
		Limit:    GetEnvInt("PLOT_LIMIT", 300),
		Window:   GetEnvInt("PLOT_WINDOW", 10),
		DedupTS:  GetEnvBool("PLOT_DEDUP_TS", false),
	}
}

// LoadDashboard returns the web dashboard configuration.
func LoadDashboard() Dashboard {
	return Dashboard{
		Base:      LoadBase(8080),
		PageLimit: GetEnvInt("DASH_PAGE_LIMIT", 500),
	}
}

// SlogLevel parses the configured log level string into an slog.Level.
func (b Base) SlogLevel() slog.Level {
	switch b.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Addr returns the listen address as ":PORT".
func (b Base) Addr() string {
	return fmt.Sprintf(":%d", b.Port)
}

// ---------------------------------------------------------------------------
// Env helpers
// ---------------------------------------------------------------------------

// GetEnv returns the value of the environment variable or fallback.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable or fallback.
func GetEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// GetEnvFloat returns the float value of the environment variable or fallback.
func GetEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// GetEnvBool returns the boolean value of the environment variable or fallback.
func GetEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// GetEnvDuration returns the duration value of the environment variable or fallback.
// The env value is parsed via time.ParseDuration (e.g. "30s", "5m").
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
