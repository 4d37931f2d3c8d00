package telemetry

import (
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	dbStartTimeKey = "telemetry:start_time"
	slowQueryAttr  = "db.slow_query"
)

// DBTracingConfig controls the gorm tracing plugin
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bound variables in span statements
	SlowQueryThresh time.Duration
	DBSystem        string
}

// DefaultDBTracingConfig returns tracing off, variables redacted and a 200ms
// slow query threshold
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

// DBTracingPlugin registers otelgorm and flags slow queries on its spans
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new DBTracingPlugin
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// Register installs otelgorm and the slow query callbacks on db
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("database tracing disabled")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if err := registerEach(db, "telemetry:before", p.before, true); err != nil {
		return err
	}
	if err := registerEach(db, "telemetry:after", p.after, false); err != nil {
		return err
	}

	p.logger.Info("database tracing enabled",
		zap.String("db_system", p.config.DBSystem),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

// registerEach hooks fn before or after every gorm operation
func registerEach(db *gorm.DB, name string, fn func(*gorm.DB), before bool) error {
	cb := db.Callback()
	type registrar interface {
		Register(string, func(*gorm.DB)) error
	}
	var targets []registrar
	if before {
		targets = []registrar{
			cb.Create().Before("gorm:create"),
			cb.Query().Before("gorm:query"),
			cb.Update().Before("gorm:update"),
			cb.Delete().Before("gorm:delete"),
			cb.Row().Before("gorm:row"),
			cb.Raw().Before("gorm:raw"),
		}
	} else {
		targets = []registrar{
			cb.Create().After("gorm:create"),
			cb.Query().After("gorm:query"),
			cb.Update().After("gorm:update"),
			cb.Delete().After("gorm:delete"),
			cb.Row().After("gorm:row"),
			cb.Raw().After("gorm:raw"),
		}
	}
	for _, t := range targets {
		if err := t.Register(name, fn); err != nil {
			return err
		}
	}
	return nil
}

func (p *DBTracingPlugin) before(db *gorm.DB) {
	db.InstanceSet(dbStartTimeKey, time.Now())
}

func (p *DBTracingPlugin) after(db *gorm.DB) {
	v, ok := db.InstanceGet(dbStartTimeKey)
	if !ok {
		return
	}
	start, ok := v.(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)

	span := trace.SpanFromContext(db.Statement.Context)
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		RecordError(span, db.Error)
	}
	if elapsed < p.config.SlowQueryThresh {
		return
	}
	if span.IsRecording() {
		span.SetAttributes(
			attribute.Bool(slowQueryAttr, true),
			attribute.Int64("db.duration_ms", elapsed.Milliseconds()),
		)
	}
	p.logger.Warn("slow query",
		zap.String("table", db.Statement.Table),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", db.RowsAffected),
	)
}
