package instrumentation

import (
	"fmt"
	"os"
	"strconv"
)

// Exporter types.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
)

// Status values for metric labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Token operation names for metric labels. Refresh outcomes have their own
// counter (RecordTokenRefresh) with RefreshReauthRequired as the third
// result besides success and error.
const (
	TokenOpLoad  = "load"
	TokenOpSave  = "save"
	TokenOpClear = "clear"

	RefreshReauthRequired = "reauth_required"
)

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	// ServiceName is the name of the service.
	ServiceName string

	// ServiceVersion is the version of the service.
	ServiceVersion string

	// Enabled determines if instrumentation is active (default: true).
	// Set INSTRUMENTATION_ENABLED=false to disable.
	Enabled bool

	// MetricsExporter specifies the metrics exporter type:
	// "prometheus", "otlp", or "stdout" (default: "prometheus").
	MetricsExporter string

	// OTLPEndpoint is the OTLP collector endpoint, e.g. "localhost:4318"
	// (no protocol prefix).
	OTLPEndpoint string

	// OTLPInsecure controls whether to use unencrypted HTTP for OTLP
	// export. Only for local development.
	OTLPInsecure bool
}

// DefaultConfig returns a Config with defaults taken from the environment.
func DefaultConfig() Config {
	return Config{
		ServiceName:     getEnvOrDefault("OTEL_SERVICE_NAME", "google-calendar-tasks-mcp"),
		ServiceVersion:  "unknown",
		Enabled:         getEnvBoolOrDefault("INSTRUMENTATION_ENABLED", true),
		MetricsExporter: getEnvOrDefault("METRICS_EXPORTER", ExporterPrometheus),
		OTLPEndpoint:    getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:    getEnvBoolOrDefault("OTEL_EXPORTER_OTLP_INSECURE", false),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	valid := map[string]bool{ExporterPrometheus: true, ExporterOTLP: true, ExporterStdout: true}
	if c.MetricsExporter != "" && !valid[c.MetricsExporter] {
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}
	if c.MetricsExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP metrics exporter")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}
