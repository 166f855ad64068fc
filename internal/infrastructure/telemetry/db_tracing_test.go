package telemetry_test

import (
	"context"
	"testing"

	"github.com/fixdesk/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID   uint
	Name string
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&widget{}))
	return db
}

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db := openDB(t)
	recorder := withRecorder(t)

	require.NoError(t, telemetry.RegisterDBTracing(db, telemetry.DBTracingConfig{Enabled: false}, zap.NewNop()))
	require.NoError(t, db.Create(&widget{Name: "a"}).Error)
	assert.Empty(t, recorder.Ended())
}

func TestRegisterDBTracing_AnnotatesSpans(t *testing.T) {
	db := openDB(t)
	recorder := withRecorder(t)

	require.NoError(t, telemetry.RegisterDBTracing(db, telemetry.DBTracingConfig{Enabled: true, DBSystem: "sqlite"}, zap.NewNop()))

	ctx, parent := otel.Tracer("test").Start(context.Background(), "parent")
	require.NoError(t, db.WithContext(ctx).Create(&widget{Name: "a"}).Error)
	require.NoError(t, db.WithContext(ctx).Create(&widget{Name: "b"}).Error)
	var found []widget
	require.NoError(t, db.WithContext(ctx).Find(&found).Error)
	parent.End()

	var tables, rows int
	for _, span := range recorder.Ended() {
		for _, attr := range span.Attributes() {
			switch attr.Key {
			case "db.sql.table":
				tables++
				assert.Equal(t, "widgets", attr.Value.AsString())
			case "db.rows_affected":
				rows++
			}
		}
	}
	assert.GreaterOrEqual(t, tables, 3)
	assert.GreaterOrEqual(t, rows, 3)
}

func TestRegisterDBTracing_Twice(t *testing.T) {
	db := openDB(t)
	cfg := telemetry.DBTracingConfig{Enabled: true, DBSystem: "sqlite"}
	require.NoError(t, telemetry.RegisterDBTracing(db, cfg, zap.NewNop()))
	assert.Error(t, telemetry.RegisterDBTracing(db, cfg, zap.NewNop()))
}
