package common

import (
	"context"

	"github.com/fixdesk/backend/internal/domain/audit"
	"github.com/fixdesk/backend/internal/domain/finance"
	"github.com/fixdesk/backend/internal/domain/inventory"
	"github.com/fixdesk/backend/internal/domain/repair"
	"github.com/fixdesk/backend/internal/domain/trade"
)

// TransactionScope runs a unit of work atomically. If fn returns an error
// the transaction is rolled back, otherwise it is committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to every repository of the engine. When handed
// out by TransactionScope.Execute all of them share one database transaction,
// and the ForUpdate finders hold their row locks until it ends.
type Repositories interface {
	PartRepo() inventory.PartRepository
	MovementRepo() inventory.StockMovementRepository
	PriceHistoryRepo() inventory.PriceHistoryRepository
	CustomerInvoiceRepo() finance.CustomerInvoiceRepository
	PaymentRepo() finance.PaymentRepository
	SupplierInvoiceRepo() finance.SupplierInvoiceRepository
	SupplierPaymentRepo() finance.SupplierPaymentRepository
	CreditNoteRepo() finance.CreditNoteRepository
	PurchaseOrderRepo() trade.PurchaseOrderRepository
	PurchaseReturnRepo() trade.PurchaseReturnRepository
	DeviceRepo() repair.DeviceRepository
	PartUsageRepo() repair.PartUsageRepository
	AuditRepo() audit.Repository
}
