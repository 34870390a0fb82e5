package instrumentation

import (
	"context"
	"testing"
	"time"
)

func TestNewProviderDisabled(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, Config{Enabled: false})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	if provider.Enabled() {
		t.Error("Expected provider disabled")
	}
	if provider.Metrics() == nil {
		t.Fatal("Expected non-nil metrics recorder even when disabled")
	}

	// The no-op recorder must be safe to use.
	provider.Metrics().RecordTokenOperation(ctx, TokenOpSave, StatusSuccess)
	provider.Metrics().RecordTokenRefresh(ctx, StatusSuccess)
	provider.Metrics().RecordAPIOperation(ctx, "calendar", "list", StatusSuccess, time.Millisecond)
	provider.Metrics().RecordToolInvocation(ctx, "calendar_list_events", StatusSuccess, time.Millisecond)

	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown of disabled provider failed: %v", err)
	}
}

func TestNewProviderPrometheus(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "test",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
	})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	defer func() {
		if err := provider.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown failed: %v", err)
		}
	}()

	if !provider.Enabled() {
		t.Error("Expected provider enabled")
	}

	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("Expected metrics recorder")
	}
	metrics.RecordTokenOperation(ctx, TokenOpLoad, StatusSuccess)
	metrics.RecordTokenRefresh(ctx, RefreshReauthRequired)
	metrics.RecordAPIOperation(ctx, "tasks", "create", StatusError, 5*time.Millisecond)
	metrics.RecordToolInvocation(ctx, "tasks_create_task", StatusError, 5*time.Millisecond)
}

func TestNewProviderRejectsInvalidConfig(t *testing.T) {
	ctx := context.Background()
	_, err := NewProvider(ctx, Config{
		Enabled:         true,
		MetricsExporter: "statsd",
	})
	if err == nil {
		t.Fatal("Expected error for invalid exporter")
	}
}

func TestZeroValueMetricsIsNoOp(t *testing.T) {
	ctx := context.Background()
	var m Metrics
	m.RecordTokenOperation(ctx, TokenOpClear, StatusSuccess)
	m.RecordTokenRefresh(ctx, StatusError)
	m.RecordAPIOperation(ctx, "gmail", "send", StatusSuccess, time.Second)
	m.RecordToolInvocation(ctx, "gmail_send_email", StatusSuccess, time.Second)
}
