package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Engine attribute keys
var (
	AttrReferenceType = attribute.Key("reference_type")
	AttrPaymentMethod = attribute.Key("payment_method")
	AttrPaymentStatus = attribute.Key("payment_status")
	AttrLedger        = attribute.Key("ledger")
)

// Ledger labels for payment metrics
const (
	LedgerCustomer = "customer"
	LedgerSupplier = "supplier"
)

// EngineMetrics counts what the consistency engine books. All methods are
// safe on a nil receiver so services can run without metrics.
type EngineMetrics struct {
	logger *zap.Logger

	stockMovements *Counter
	stockUnits     *Counter
	payments       *Counter
	paymentCents   *Counter
	creditsIssued  *Counter
	creditsApplied *Counter
	creditCents    *Counter
	sweepUpdates   *Counter
	lowStockParts  *Gauge

	lowStock LowStockCounter
	stopChan chan struct{}
	stopOnce sync.Once
	runOnce  sync.Once
}

// LowStockCounter reports how many active parts sit below their minimum
type LowStockCounter interface {
	CountLowStock(ctx context.Context) (int64, error)
}

// EngineMetricsConfig holds configuration for engine metrics
type EngineMetricsConfig struct {
	Meter    metric.Meter
	Logger   *zap.Logger
	LowStock LowStockCounter
}

// NewEngineMetrics creates the engine instruments on the given meter
func NewEngineMetrics(cfg EngineMetricsConfig) (*EngineMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	em := &EngineMetrics{
		logger:   logger,
		lowStock: cfg.LowStock,
		stopChan: make(chan struct{}),
	}

	counters := []struct {
		target **Counter
		name   string
		desc   string
		unit   string
	}{
		{&em.stockMovements, "fixdesk_stock_movements_total", "Stock movements appended to the ledger", "{movements}"},
		{&em.stockUnits, "fixdesk_stock_units_total", "Absolute units moved through the ledger", "{units}"},
		{&em.payments, "fixdesk_payments_total", "Payments recorded against invoices", "{payments}"},
		{&em.paymentCents, "fixdesk_payment_amount_total", "Payment amount recorded, in cents", "{cents}"},
		{&em.creditsIssued, "fixdesk_credit_notes_issued_total", "Credit notes issued for purchase returns", "{notes}"},
		{&em.creditsApplied, "fixdesk_credit_applications_total", "Credit applications to supplier invoices", "{applications}"},
		{&em.creditCents, "fixdesk_credit_applied_amount_total", "Credit applied to supplier invoices, in cents", "{cents}"},
		{&em.sweepUpdates, "fixdesk_sweep_updates_total", "Rows changed by the scheduled sweeps", "{rows}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	em.lowStockParts, err = NewGauge(cfg.Meter, "fixdesk_low_stock_parts", "Active parts below their minimum stock level", "{parts}")
	if err != nil {
		return nil, err
	}
	return em, nil
}

func cents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// RecordStockMovement counts one ledger movement
func (em *EngineMetrics) RecordStockMovement(ctx context.Context, referenceType string, delta int) {
	if em == nil {
		return
	}
	attrs := AttrReferenceType.String(referenceType)
	em.stockMovements.Inc(ctx, attrs)
	if delta < 0 {
		delta = -delta
	}
	em.stockUnits.Add(ctx, int64(delta), attrs)
}

// RecordPayment counts a payment on the customer or supplier ledger. Status
// is the invoice status after the payment.
func (em *EngineMetrics) RecordPayment(ctx context.Context, ledger, method, status string, amount decimal.Decimal) {
	if em == nil {
		return
	}
	attrs := []attribute.KeyValue{
		AttrLedger.String(ledger),
		AttrPaymentMethod.String(method),
		AttrPaymentStatus.String(status),
	}
	em.payments.Inc(ctx, attrs...)
	em.paymentCents.Add(ctx, cents(amount), attrs[:1]...)
}

// RecordCreditIssued counts a new credit note
func (em *EngineMetrics) RecordCreditIssued(ctx context.Context) {
	if em == nil {
		return
	}
	em.creditsIssued.Inc(ctx)
}

// RecordCreditApplied counts a credit application and its amount
func (em *EngineMetrics) RecordCreditApplied(ctx context.Context, amount decimal.Decimal) {
	if em == nil {
		return
	}
	em.creditsApplied.Inc(ctx)
	em.creditCents.Add(ctx, cents(amount))
}

// RecordSweep counts rows a scheduled sweep changed
func (em *EngineMetrics) RecordSweep(ctx context.Context, sweep string, changed int) {
	if em == nil || changed <= 0 {
		return
	}
	em.sweepUpdates.Add(ctx, int64(changed), attribute.String("sweep", sweep))
}

// StartLowStockCollection samples the low stock gauge every interval until
// Stop is called or ctx ends.
func (em *EngineMetrics) StartLowStockCollection(ctx context.Context, interval time.Duration) {
	if em == nil || em.lowStock == nil {
		return
	}
	em.runOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go em.collectLoop(ctx, interval)
	})
}

func (em *EngineMetrics) collectLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	em.CollectLowStock(ctx)
	for {
		select {
		case <-em.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			em.CollectLowStock(ctx)
		}
	}
}

// CollectLowStock records the current low stock count once
func (em *EngineMetrics) CollectLowStock(ctx context.Context) {
	if em == nil || em.lowStock == nil {
		return
	}
	count, err := em.lowStock.CountLowStock(ctx)
	if err != nil {
		em.logger.Warn("Failed to count low stock parts", zap.Error(err))
		return
	}
	em.lowStockParts.Record(ctx, count)
}

// Stop ends periodic collection
func (em *EngineMetrics) Stop() {
	if em == nil {
		return
	}
	em.stopOnce.Do(func() { close(em.stopChan) })
}

// MetricsError reports a failure to build instruments
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = &MetricsError{Op: "NewEngineMetrics", Err: "meter cannot be nil"}
