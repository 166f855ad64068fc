package finance

import (
	"errors"
	"testing"
	"time"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSupplierInvoice(t *testing.T, total string, due *time.Time) *SupplierInvoice {
	t.Helper()
	inv, err := NewSupplierInvoice("SINV-1", uuid.New(), nil, dec(total), due)
	require.NoError(t, err)
	return inv
}

func TestSupplierInvoice_ApplyPaymentDelta(t *testing.T) {
	now := time.Now()

	inv := newSupplierInvoice(t, "100", nil)
	require.NoError(t, inv.ApplyPaymentDelta(dec("30"), now))
	assert.Equal(t, SupplierInvoiceStatusPartial, inv.Status)
	assert.Equal(t, "70", inv.Outstanding().String())

	require.NoError(t, inv.ApplyPaymentDelta(dec("70"), now))
	assert.Equal(t, SupplierInvoiceStatusPaid, inv.Status)

	require.NoError(t, inv.ApplyPaymentDelta(dec("-100"), now))
	assert.Equal(t, SupplierInvoiceStatusPending, inv.Status)
	assert.True(t, inv.PaidAmount.IsZero())

	err := inv.ApplyPaymentDelta(dec("-1"), now)
	assert.True(t, errors.Is(err, shared.ErrValidation))
	assert.True(t, inv.PaidAmount.IsZero())
}

func TestSupplierInvoice_Overdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-48 * time.Hour)

	inv := newSupplierInvoice(t, "100", &past)
	assert.True(t, inv.MarkOverdue(now))
	assert.False(t, inv.MarkOverdue(now))
	assert.Equal(t, SupplierInvoiceStatusOverdue, inv.Status)

	require.NoError(t, inv.ApplyPaymentDelta(dec("40"), now))
	assert.Equal(t, SupplierInvoiceStatusOverdue, inv.Status)

	require.NoError(t, inv.ApplyPaymentDelta(dec("60"), now))
	assert.Equal(t, SupplierInvoiceStatusPaid, inv.Status)
	assert.False(t, inv.MarkOverdue(now))

	future := now.Add(48 * time.Hour)
	notDue := newSupplierInvoice(t, "100", &future)
	assert.False(t, notDue.MarkOverdue(now))
}

func TestSupplierPayment_ChangeAmount(t *testing.T) {
	p, err := NewSupplierPayment(uuid.New(), dec("50"), PaymentMethodBankTransfer, time.Time{}, "", "alice")
	require.NoError(t, err)

	diff, err := p.ChangeAmount(dec("35"), PaymentMethodBankTransfer, time.Time{}, "")
	require.NoError(t, err)
	assert.Equal(t, "-15", diff.String())
	assert.Equal(t, "35", p.Amount.String())

	_, err = p.ChangeAmount(decimal.Zero, PaymentMethodBankTransfer, time.Time{}, "")
	assert.True(t, errors.Is(err, shared.ErrValidation))
	assert.Equal(t, "35", p.Amount.String())
}
