package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormPartRepository_FindByIDForUpdate_LocksRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormPartRepository(db)
	partID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "sku", "barcode", "name", "current_stock", "is_active"}).
		AddRow(partID, "APP-BAT-IPHO-01", "PAR-APP013-0042", "iPhone 13 battery", 7, true)
	mock.ExpectQuery(`SELECT \* FROM "parts" WHERE id = \$1 ORDER BY .* LIMIT .* FOR UPDATE`).
		WithArgs(partID, 1).
		WillReturnRows(rows)

	part, err := repo.FindByIDForUpdate(context.Background(), partID)
	require.NoError(t, err)
	assert.Equal(t, partID, part.ID)
	assert.Equal(t, 7, part.CurrentStock)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSupplierInvoiceRepository_FindByIDForUpdate_LocksRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormSupplierInvoiceRepository(db)
	invoiceID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "invoice_number", "total_amount", "paid_amount", "status"}).
		AddRow(invoiceID, "SINV-1", "100.00", "0", "pending")
	mock.ExpectQuery(`SELECT \* FROM "supplier_invoices" WHERE id = \$1 ORDER BY .* LIMIT .* FOR UPDATE`).
		WithArgs(invoiceID, 1).
		WillReturnRows(rows)

	inv, err := repo.FindByIDForUpdate(context.Background(), invoiceID)
	require.NoError(t, err)
	assert.Equal(t, "SINV-1", inv.InvoiceNumber)
	assert.Equal(t, "100", inv.Outstanding().String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPartRepository_FindByIDForUpdate_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormPartRepository(db)
	partID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "parts" WHERE id = \$1 .* FOR UPDATE`).
		WithArgs(partID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByIDForUpdate(context.Background(), partID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
