package instrumentation

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.ServiceName != "google-calendar-tasks-mcp" {
		t.Errorf("Expected default service name, got %s", config.ServiceName)
	}
	if !config.Enabled {
		t.Error("Expected instrumentation enabled by default")
	}
	if config.MetricsExporter != ExporterPrometheus {
		t.Errorf("Expected prometheus exporter by default, got %s", config.MetricsExporter)
	}
}

func TestDefaultConfigEnvOverrides(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "custom-service")
	t.Setenv("INSTRUMENTATION_ENABLED", "false")
	t.Setenv("METRICS_EXPORTER", "stdout")

	config := DefaultConfig()
	if config.ServiceName != "custom-service" {
		t.Errorf("Expected 'custom-service', got %s", config.ServiceName)
	}
	if config.Enabled {
		t.Error("Expected instrumentation disabled via env")
	}
	if config.MetricsExporter != ExporterStdout {
		t.Errorf("Expected stdout exporter, got %s", config.MetricsExporter)
	}
}

func TestDefaultConfigInvalidBoolFallsBack(t *testing.T) {
	t.Setenv("INSTRUMENTATION_ENABLED", "maybe")
	config := DefaultConfig()
	if !config.Enabled {
		t.Error("Expected fallback to default (enabled) for unparseable bool")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{
			name:        "prometheus exporter",
			config:      Config{MetricsExporter: ExporterPrometheus},
			expectError: false,
		},
		{
			name:        "stdout exporter",
			config:      Config{MetricsExporter: ExporterStdout},
			expectError: false,
		},
		{
			name:        "otlp with endpoint",
			config:      Config{MetricsExporter: ExporterOTLP, OTLPEndpoint: "localhost:4318"},
			expectError: false,
		},
		{
			name:        "otlp without endpoint",
			config:      Config{MetricsExporter: ExporterOTLP},
			expectError: true,
		},
		{
			name:        "unknown exporter",
			config:      Config{MetricsExporter: "statsd"},
			expectError: true,
		},
		{
			name:        "empty exporter is allowed",
			config:      Config{},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}
