package telemetry

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dbMetricsStartKey = "telemetry:metrics_start"

// DBMetrics records query latency and observes the connection pool
type DBMetrics struct {
	queryTotal     *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter
	registration   metric.Registration

	slowThreshold time.Duration
	logger        *zap.Logger
}

// NewDBMetrics registers query instruments and, when sqlDB is non-nil,
// observable pool gauges read at collection time
func NewDBMetrics(meter metric.Meter, sqlDB *sql.DB, slowThreshold time.Duration, logger *zap.Logger) (*DBMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if slowThreshold <= 0 {
		slowThreshold = 200 * time.Millisecond
	}

	m := &DBMetrics{slowThreshold: slowThreshold, logger: logger}
	var err error
	if m.queryTotal, err = NewCounter(meter, "db_query_total", "Database queries by operation", "{query}"); err != nil {
		return nil, err
	}
	if m.slowQueryTotal, err = NewCounter(meter, "db_slow_query_total", "Database queries over the slow threshold", "{query}"); err != nil {
		return nil, err
	}
	if m.queryDuration, err = NewHistogram(meter, "db_query_duration_seconds", "Database query latency", "s", DBDurationBuckets); err != nil {
		return nil, err
	}

	if sqlDB == nil {
		return m, nil
	}
	conns, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Connections in the pool by state"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}
	maxConns, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum open connections"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}
	m.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := sqlDB.Stats()
		o.ObserveInt64(conns, int64(s.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(conns, int64(s.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(maxConns, int64(s.MaxOpenConnections))
		return nil
	}, conns, maxConns)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Register installs the timing callbacks on db
func (m *DBMetrics) Register(db *gorm.DB) error {
	if err := registerEach(db, "telemetry:metrics_before", m.before, true); err != nil {
		return err
	}
	return registerEach(db, "telemetry:metrics_after", m.after, false)
}

// Stop unregisters the pool callback
func (m *DBMetrics) Stop() error {
	if m.registration == nil {
		return nil
	}
	return m.registration.Unregister()
}

func (m *DBMetrics) before(db *gorm.DB) {
	db.InstanceSet(dbMetricsStartKey, time.Now())
}

func (m *DBMetrics) after(db *gorm.DB) {
	v, ok := db.InstanceGet(dbMetricsStartKey)
	if !ok {
		return
	}
	start, ok := v.(time.Time)
	if !ok {
		return
	}
	m.Observe(db.Statement.Context, operationName(db), db.Statement.Table, time.Since(start))
}

// Observe records one query
func (m *DBMetrics) Observe(ctx context.Context, operation, table string, elapsed time.Duration) {
	if ctx == nil {
		ctx = context.Background()
	}
	op, tbl := AttrDBOperation.String(operation), AttrDBTable.String(table)
	m.queryTotal.Inc(ctx, op, tbl)
	m.queryDuration.RecordDuration(ctx, elapsed, op, tbl)
	if elapsed >= m.slowThreshold {
		m.slowQueryTotal.Inc(ctx, op, tbl)
	}
}

// operationName derives select/insert/update/delete/raw from the statement
func operationName(db *gorm.DB) string {
	verb, _, _ := strings.Cut(strings.TrimSpace(db.Statement.SQL.String()), " ")
	if verb == "" {
		return "unknown"
	}
	return strings.ToLower(verb)
}
