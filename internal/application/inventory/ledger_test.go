package inventory

import (
	"context"
	"testing"

	"github.com/fixdesk/backend/internal/application/common"
	"github.com/fixdesk/backend/internal/domain/inventory"
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/fixdesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestLedger_ApplyAll_RollsBackAsAUnit(t *testing.T) {
	svc, h := newPartService(t, false)
	ctx := context.Background()
	svc.SetRandomSource(func(n int) int { return 1 })
	first := createBattery(t, svc, 5)
	svc.SetRandomSource(func(n int) int { return 2 })
	second := createBattery(t, svc, 1)

	ledger := NewLedger(false)
	err := h.Runner.Run(ctx, func(w *common.Work) error {
		return ledger.ApplyAll(ctx, w, []Adjustment{
			{PartID: first.ID, Delta: -2, ReferenceType: inventory.ReferencePurchaseReturn, Actor: "alice"},
			{PartID: second.ID, Delta: -4, ReferenceType: inventory.ReferencePurchaseReturn, Actor: "alice"},
		})
	})
	assert.ErrorIs(t, err, shared.ErrValidation)

	for _, id := range []uuid.UUID{first.ID, second.ID} {
		result, err := svc.Reconcile(ctx, id)
		require.NoError(t, err)
		assert.True(t, result.Consistent)
	}
	a, err := svc.GetPart(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, a.CurrentStock)
}

func TestLedger_Apply_RejectsUnknownReference(t *testing.T) {
	svc, h := newPartService(t, true)
	ctx := context.Background()
	part := createBattery(t, svc, 5)

	err := h.Runner.Run(ctx, func(w *common.Work) error {
		_, err := NewLedger(true).Apply(ctx, w, Adjustment{PartID: part.ID, Delta: 1, ReferenceType: "gift"})
		return err
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func movementCount(t *testing.T, reader *sdkmetric.ManualReader) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "fixdesk_stock_movements_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestLedger_MetricsCountCommittedMovementsOnly(t *testing.T) {
	svc, h := newPartService(t, false)
	ctx := context.Background()
	part := createBattery(t, svc, 3)

	reader := sdkmetric.NewManualReader()
	metrics, err := telemetry.NewEngineMetrics(telemetry.EngineMetricsConfig{
		Meter: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"),
	})
	require.NoError(t, err)
	ledger := NewLedger(false)
	ledger.SetMetrics(metrics)

	apply := func(delta int) error {
		return h.Runner.Run(ctx, func(w *common.Work) error {
			_, err := ledger.Apply(ctx, w, Adjustment{PartID: part.ID, Delta: delta, ReferenceType: inventory.ReferenceManualAdjustment, Actor: "alice"})
			return err
		})
	}

	require.NoError(t, apply(-1))
	require.Error(t, apply(-10))
	assert.Equal(t, int64(1), movementCount(t, reader))
}
