package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// memoryExporter keeps exported log records in memory
type memoryExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *memoryExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range records {
		e.records = append(e.records, records[i].Clone())
	}
	return nil
}

func (e *memoryExporter) Shutdown(context.Context) error   { return nil }
func (e *memoryExporter) ForceFlush(context.Context) error { return nil }

func (e *memoryExporter) bodies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.records))
	for _, r := range e.records {
		out = append(out, r.Body().AsString())
	}
	return out
}

func TestNewLoggerProvider_Disabled(t *testing.T) {
	for name, cfg := range map[string]config.TelemetryConfig{
		"telemetry off": {Enabled: false, LogsEnabled: true},
		"logs off":      {Enabled: true, LogsEnabled: false},
	} {
		t.Run(name, func(t *testing.T) {
			lp, err := NewLoggerProvider(context.Background(), cfg, zap.NewNop())
			require.NoError(t, err)
			assert.False(t, lp.IsEnabled())

			base := zap.NewNop()
			assert.Same(t, base, lp.Bridge(base, zapcore.InfoLevel))
			assert.NoError(t, lp.ForceFlush(context.Background()))
			assert.NoError(t, lp.Shutdown(context.Background()))
		})
	}
}

func TestLoggerProvider_Bridge(t *testing.T) {
	exporter := &memoryExporter{}
	lp := &LoggerProvider{logger: zap.NewNop(), config: config.TelemetryConfig{ServiceName: "storefront-test"}}
	require.NoError(t, lp.install(sdklog.NewSimpleProcessor(exporter)))
	t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })

	core, local := observer.New(zapcore.DebugLevel)
	log := lp.Bridge(zap.New(core), zapcore.WarnLevel)

	log.Debug("cart loaded")
	log.Warn("stock low", zap.String("sku", "MUG-1"))
	log.With(zap.String("order_number", "ORD-1")).Error("checkout failed")
	require.NoError(t, lp.ForceFlush(context.Background()))

	assert.Equal(t, 3, local.Len(), "the local core keeps every entry")
	assert.Equal(t, []string{"stock low", "checkout failed"}, exporter.bodies())

	exporter.mu.Lock()
	defer exporter.mu.Unlock()
	assert.Equal(t, otellog.SeverityWarn, exporter.records[0].Severity())
	assert.Equal(t, otellog.SeverityError, exporter.records[1].Severity())
}
