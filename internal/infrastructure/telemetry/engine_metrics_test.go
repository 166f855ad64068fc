package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fixdesk/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixedLowStock struct {
	count int64
	err   error
}

func (f fixedLowStock) CountLowStock(context.Context) (int64, error) {
	return f.count, f.err
}

func newMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewEngineMetrics_NilMeter(t *testing.T) {
	em, err := telemetry.NewEngineMetrics(telemetry.EngineMetricsConfig{})
	require.Error(t, err)
	assert.Nil(t, em)
	assert.Equal(t, "NewEngineMetrics: meter cannot be nil", err.Error())
}

func TestEngineMetrics_NilReceiver(t *testing.T) {
	var em *telemetry.EngineMetrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		em.RecordStockMovement(ctx, "repair_ticket", -2)
		em.RecordPayment(ctx, telemetry.LedgerCustomer, "cash", "paid", decimal.NewFromInt(1))
		em.RecordCreditIssued(ctx)
		em.RecordCreditApplied(ctx, decimal.NewFromInt(1))
		em.RecordSweep(ctx, "overdue", 3)
		em.CollectLowStock(ctx)
		em.Stop()
	})
}

func TestEngineMetrics_Counters(t *testing.T) {
	reader, mp := newMeter(t)
	em, err := telemetry.NewEngineMetrics(telemetry.EngineMetricsConfig{
		Meter:    mp.Meter("test"),
		LowStock: fixedLowStock{count: 4},
	})
	require.NoError(t, err)
	ctx := context.Background()

	em.RecordStockMovement(ctx, "repair_ticket", -3)
	em.RecordStockMovement(ctx, "purchase_order", 20)
	em.RecordPayment(ctx, telemetry.LedgerCustomer, "cash", "partially_paid", decimal.RequireFromString("100.005"))
	em.RecordPayment(ctx, telemetry.LedgerSupplier, "bank", "paid", decimal.NewFromInt(50))
	em.RecordCreditIssued(ctx)
	em.RecordCreditApplied(ctx, decimal.RequireFromString("40.00"))
	em.RecordSweep(ctx, "overdue", 0)
	em.RecordSweep(ctx, "credit_expiry", 2)
	em.CollectLowStock(ctx)

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, metrics["fixdesk_stock_movements_total"]))
	assert.Equal(t, int64(23), sumOf(t, metrics["fixdesk_stock_units_total"]))
	assert.Equal(t, int64(2), sumOf(t, metrics["fixdesk_payments_total"]))
	assert.Equal(t, int64(15001), sumOf(t, metrics["fixdesk_payment_amount_total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["fixdesk_credit_notes_issued_total"]))
	assert.Equal(t, int64(4000), sumOf(t, metrics["fixdesk_credit_applied_amount_total"]))
	assert.Equal(t, int64(2), sumOf(t, metrics["fixdesk_sweep_updates_total"]))

	gauge, ok := metrics["fixdesk_low_stock_parts"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(4), gauge.DataPoints[0].Value)

	movements := metrics["fixdesk_stock_movements_total"].Data.(metricdata.Sum[int64])
	refs := map[string]bool{}
	for _, dp := range movements.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("reference_type"))
		refs[v.AsString()] = true
	}
	assert.Equal(t, map[string]bool{"repair_ticket": true, "purchase_order": true}, refs)
}

func TestEngineMetrics_LowStockError(t *testing.T) {
	reader, mp := newMeter(t)
	em, err := telemetry.NewEngineMetrics(telemetry.EngineMetricsConfig{
		Meter:    mp.Meter("test"),
		Logger:   zap.NewNop(),
		LowStock: fixedLowStock{err: errors.New("db down")},
	})
	require.NoError(t, err)

	em.CollectLowStock(context.Background())
	_, recorded := collect(t, reader)["fixdesk_low_stock_parts"]
	assert.False(t, recorded)
}

func TestGormLowStockCounter(t *testing.T) {
	db := openDB(t)
	type part struct {
		ID            uint
		IsActive      bool
		CurrentStock  int
		MinStockLevel int
	}
	require.NoError(t, db.Table("parts").AutoMigrate(&part{}))
	rows := []part{
		{IsActive: true, CurrentStock: 1, MinStockLevel: 3},
		{IsActive: true, CurrentStock: 3, MinStockLevel: 3},
		{IsActive: true, CurrentStock: 0, MinStockLevel: 0},
		{IsActive: false, CurrentStock: 0, MinStockLevel: 5},
		{IsActive: true, CurrentStock: -2, MinStockLevel: 1},
	}
	require.NoError(t, db.Session(&gorm.Session{}).Table("parts").Create(&rows).Error)

	count, err := telemetry.NewGormLowStockCounter(db).CountLowStock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestDBMetrics_Plugin(t *testing.T) {
	reader, mp := newMeter(t)
	m, err := telemetry.NewDBMetrics(mp.Meter("test"), telemetry.DBMetricsConfig{}, zap.NewNop())
	require.NoError(t, err)

	db := openDB(t)
	require.NoError(t, db.Use(m))
	require.NoError(t, db.Create(&widget{Name: "a"}).Error)
	var found []widget
	require.NoError(t, db.Find(&found).Error)

	metrics := collect(t, reader)
	assert.GreaterOrEqual(t, sumOf(t, metrics["db_statements_total"]), int64(2))
	_, ok := metrics["db_statement_duration_seconds"].Data.(metricdata.Histogram[float64])
	assert.True(t, ok)
}
