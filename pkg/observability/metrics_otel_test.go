package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupTestMeterProvider creates a test meter provider with a manual reader
func setupTestMeterProvider(t *testing.T) (*metric.MeterProvider, *metric.ManualReader) {
	t.Helper()
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	otel.SetMeterProvider(provider)
	return provider, reader
}

func collectMetricNames(t *testing.T, reader *metric.ManualReader) map[string]bool {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Failed to collect metrics: %v", err)
	}
	names := make(map[string]bool)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	return names
}

func TestNewOTelMetrics(t *testing.T) {
	provider, _ := setupTestMeterProvider(t)
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down provider: %v", err)
		}
	}()

	m, err := NewOTelMetrics()
	if err != nil {
		t.Fatalf("NewOTelMetrics() error = %v, want nil", err)
	}
	if m == nil {
		t.Fatal("NewOTelMetrics() returned nil metrics")
	}

	if m.cacheHitsTotal == nil {
		t.Error("cacheHitsTotal is nil")
	}
	if m.cacheMissesTotal == nil {
		t.Error("cacheMissesTotal is nil")
	}
	if m.cacheEvictionsTotal == nil {
		t.Error("cacheEvictionsTotal is nil")
	}
	if m.cacheSize == nil {
		t.Error("cacheSize is nil")
	}
	if m.snapshotOperations == nil {
		t.Error("snapshotOperations is nil")
	}
	if m.snapshotDuration == nil {
		t.Error("snapshotDuration is nil")
	}
}

func TestOTelMetrics_CacheCounters(t *testing.T) {
	tests := []struct {
		name     string
		record   func(ctx context.Context, m *OTelMetrics)
		wantName string
	}{
		{
			name:     "cache hit",
			record:   func(ctx context.Context, m *OTelMetrics) { m.RecordCacheHit(ctx, "principal") },
			wantName: "cache.hits.total",
		},
		{
			name:     "cache miss",
			record:   func(ctx context.Context, m *OTelMetrics) { m.RecordCacheMiss(ctx, "principal") },
			wantName: "cache.misses.total",
		},
		{
			name:     "cache eviction",
			record:   func(ctx context.Context, m *OTelMetrics) { m.RecordCacheEviction(ctx, "decision") },
			wantName: "cache.evictions.total",
		},
		{
			name:     "cache size delta",
			record:   func(ctx context.Context, m *OTelMetrics) { m.UpdateCacheSize(ctx, "principal", 3) },
			wantName: "cache.size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, reader := setupTestMeterProvider(t)
			defer func() {
				if err := provider.Shutdown(context.Background()); err != nil {
					t.Logf("Error shutting down provider: %v", err)
				}
			}()

			m, err := NewOTelMetrics()
			if err != nil {
				t.Fatalf("NewOTelMetrics() error = %v", err)
			}

			tt.record(context.Background(), m)

			names := collectMetricNames(t, reader)
			if !names[tt.wantName] {
				t.Errorf("%s not recorded", tt.wantName)
			}
		})
	}
}

func TestOTelMetrics_RecordSnapshotStoreOperation(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		backend   string
		duration  time.Duration
		err       error
	}{
		{
			name:      "successful load",
			operation: "load",
			backend:   "s3",
			duration:  100 * time.Millisecond,
		},
		{
			name:      "successful save",
			operation: "save",
			backend:   "file",
			duration:  200 * time.Millisecond,
		},
		{
			name:      "failed load",
			operation: "load",
			backend:   "redis",
			duration:  50 * time.Millisecond,
			err:       errors.New("connection refused"),
		},
		{
			name:      "clear",
			operation: "clear",
			backend:   "file",
			duration:  25 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, reader := setupTestMeterProvider(t)
			defer func() {
				if err := provider.Shutdown(context.Background()); err != nil {
					t.Logf("Error shutting down provider: %v", err)
				}
			}()

			m, err := NewOTelMetrics()
			if err != nil {
				t.Fatalf("NewOTelMetrics() error = %v", err)
			}

			m.RecordSnapshotStoreOperation(context.Background(), tt.operation, tt.backend, tt.duration, tt.err)

			names := collectMetricNames(t, reader)
			if !names["tabstore.operations.total"] {
				t.Error("Snapshot store operations counter not recorded")
			}
			if !names["tabstore.operation.duration"] {
				t.Error("Snapshot store operation duration not recorded")
			}
		})
	}
}

func TestOTelMetrics_MultipleOperations(t *testing.T) {
	provider, reader := setupTestMeterProvider(t)
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down provider: %v", err)
		}
	}()

	m, err := NewOTelMetrics()
	if err != nil {
		t.Fatalf("NewOTelMetrics() error = %v", err)
	}

	ctx := context.Background()
	m.RecordCacheMiss(ctx, "principal")
	m.RecordCacheHit(ctx, "principal")
	m.RecordCacheHit(ctx, "principal")
	m.RecordSnapshotStoreOperation(ctx, "save", "file", 10*time.Millisecond, nil)
	m.RecordSnapshotStoreOperation(ctx, "load", "file", 5*time.Millisecond, nil)

	names := collectMetricNames(t, reader)
	for _, want := range []string{
		"cache.hits.total",
		"cache.misses.total",
		"tabstore.operations.total",
		"tabstore.operation.duration",
	} {
		if !names[want] {
			t.Errorf("%s not recorded", want)
		}
	}
}
