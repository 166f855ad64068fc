package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var dbDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// DBMetricsConfig configures database metrics
type DBMetricsConfig struct {
	Enabled            bool
	SlowQueryThreshold time.Duration
	PoolStatsInterval  time.Duration
}

// DBMetrics records statement latency and connection pool usage
type DBMetrics struct {
	statements *Counter
	slow       *Counter
	duration   *Histogram
	pool       *Gauge

	config   DBMetricsConfig
	logger   *zap.Logger
	sqlDB    *sql.DB
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewDBMetrics creates the database instruments
func NewDBMetrics(meter metric.Meter, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if meter == nil {
		return nil, &MetricsError{Op: "NewDBMetrics", Err: "meter cannot be nil"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.PoolStatsInterval <= 0 {
		cfg.PoolStatsInterval = 15 * time.Second
	}

	m := &DBMetrics{config: cfg, logger: logger, stopCh: make(chan struct{})}
	var err error
	if m.statements, err = NewCounter(meter, "db_statements_total", "Statements executed by operation", "{statements}"); err != nil {
		return nil, err
	}
	if m.slow, err = NewCounter(meter, "db_slow_statements_total", "Statements slower than the threshold", "{statements}"); err != nil {
		return nil, err
	}
	if m.duration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_statement_duration_seconds",
		Description: "Statement latency",
		Unit:        "s",
		Boundaries:  dbDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.pool, err = NewGauge(meter, "db_pool_connections", "Pool connections by state", "{connections}"); err != nil {
		return nil, err
	}
	return m, nil
}

// Record books one finished statement
func (m *DBMetrics) Record(ctx context.Context, operation, table string, elapsed time.Duration) {
	op := attribute.String("db.operation", operation)
	m.statements.Inc(ctx, op)
	m.duration.RecordDuration(ctx, elapsed, op)
	if elapsed > m.config.SlowQueryThreshold {
		if table == "" {
			table = "unknown"
		}
		m.slow.Inc(ctx, op, attribute.String("db.table", table))
	}
}

// StartPoolStats samples sql.DB stats until Stop
func (m *DBMetrics) StartPoolStats(ctx context.Context, sqlDB *sql.DB) {
	m.sqlDB = sqlDB
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.config.PoolStatsInterval)
		defer ticker.Stop()
		for {
			m.samplePool(ctx)
			select {
			case <-ticker.C:
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *DBMetrics) samplePool(ctx context.Context) {
	stats := m.sqlDB.Stats()
	m.pool.Record(ctx, int64(stats.Idle), attribute.String("state", "idle"))
	m.pool.Record(ctx, int64(stats.InUse), attribute.String("state", "in_use"))
	m.pool.Record(ctx, int64(stats.MaxOpenConnections), attribute.String("state", "max"))
}

// Stop ends pool sampling. Safe to call more than once.
func (m *DBMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.wg.Wait()
	})
}

type dbStartKey struct{}

// Name implements gorm.Plugin
func (m *DBMetrics) Name() string {
	return "fixdesk:db_metrics"
}

// Initialize implements gorm.Plugin by timing every statement callback chain
func (m *DBMetrics) Initialize(db *gorm.DB) error {
	start := func(tx *gorm.DB) {
		tx.Statement.Context = context.WithValue(tx.Statement.Context, dbStartKey{}, time.Now())
	}
	finish := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			began, ok := tx.Statement.Context.Value(dbStartKey{}).(time.Time)
			if !ok {
				return
			}
			m.Record(tx.Statement.Context, operation, tx.Statement.Table, time.Since(began))
		}
	}

	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("fixdesk:metrics_before_create", start),
		cb.Create().After("gorm:create").Register("fixdesk:metrics_after_create", finish("insert")),
		cb.Query().Before("gorm:query").Register("fixdesk:metrics_before_query", start),
		cb.Query().After("gorm:query").Register("fixdesk:metrics_after_query", finish("select")),
		cb.Update().Before("gorm:update").Register("fixdesk:metrics_before_update", start),
		cb.Update().After("gorm:update").Register("fixdesk:metrics_after_update", finish("update")),
		cb.Delete().Before("gorm:delete").Register("fixdesk:metrics_before_delete", start),
		cb.Delete().After("gorm:delete").Register("fixdesk:metrics_after_delete", finish("delete")),
		cb.Raw().Before("gorm:raw").Register("fixdesk:metrics_before_raw", start),
		cb.Raw().After("gorm:raw").Register("fixdesk:metrics_after_raw", finish("raw")),
	)
}

// RegisterDBMetrics installs statement metrics on db and starts pool
// sampling. It returns nil when disabled.
func RegisterDBMetrics(ctx context.Context, db *gorm.DB, mp *MeterProvider, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if !cfg.Enabled || mp == nil || !mp.IsEnabled() {
		return nil, nil
	}
	m, err := NewDBMetrics(mp.Meter("fixdesk.db"), cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Use(m); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	m.StartPoolStats(ctx, sqlDB)
	logger.Info("Database metrics registered", zap.Duration("slow_query_threshold", m.config.SlowQueryThreshold))
	return m, nil
}
