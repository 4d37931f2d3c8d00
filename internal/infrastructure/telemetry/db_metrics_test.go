package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type sample struct {
	ID   uint
	Name string
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&sample{}))
	return db
}

func TestDBMetrics_RecordsQueries(t *testing.T) {
	reader, mp := newTestMeter(t)
	db := openSQLite(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	m, err := NewDBMetrics(mp.Meter("test"), sqlDB, time.Hour, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Register(db))
	t.Cleanup(func() { _ = m.Stop() })

	require.NoError(t, db.Create(&sample{Name: "a"}).Error)
	var got []sample
	require.NoError(t, db.Find(&got).Error)

	metrics := collect(t, reader)

	total := metrics["db_query_total"].Data.(metricdata.Sum[int64])
	ops := map[string]int64{}
	for _, dp := range total.DataPoints {
		op, _ := dp.Attributes.Value(AttrDBOperation)
		ops[op.AsString()] += dp.Value
	}
	assert.Equal(t, int64(1), ops["insert"])
	assert.Equal(t, int64(1), ops["select"])

	_, hasSlow := metrics["db_slow_query_total"]
	assert.False(t, hasSlow, "no query should cross a one hour threshold")

	pool := metrics["db_pool_connections_max"].Data.(metricdata.Gauge[int64])
	require.Len(t, pool.DataPoints, 1)
	assert.Equal(t, int64(1), pool.DataPoints[0].Value)
}

func TestDBMetrics_ObserveSlow(t *testing.T) {
	reader, mp := newTestMeter(t)
	m, err := NewDBMetrics(mp.Meter("test"), nil, 10*time.Millisecond, nil)
	require.NoError(t, err)

	m.Observe(context.Background(), "update", "products", 50*time.Millisecond)

	metrics := collect(t, reader)
	slow := metrics["db_slow_query_total"].Data.(metricdata.Sum[int64])
	require.Len(t, slow.DataPoints, 1)
	assert.Equal(t, int64(1), slow.DataPoints[0].Value)
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db := openSQLite(t)
	p := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())
	require.NoError(t, p.Register(db))
}

func TestDBTracingPlugin_Enabled(t *testing.T) {
	recorder := installRecorder(t)
	db := openSQLite(t)

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.DBSystem = "sqlite"
	cfg.SlowQueryThresh = time.Nanosecond
	require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).Register(db))

	require.NoError(t, db.WithContext(context.Background()).Create(&sample{Name: "b"}).Error)

	assert.NotEmpty(t, recorder.Ended())
}

func TestTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), telemetryDisabled(), zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	assert.NoError(t, tp.Shutdown(context.Background()))

	mp, err := NewMeterProvider(context.Background(), telemetryDisabled(), zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, mp.Meter("x"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func telemetryDisabled() config.TelemetryConfig {
	return config.TelemetryConfig{ServiceName: "test"}
}
