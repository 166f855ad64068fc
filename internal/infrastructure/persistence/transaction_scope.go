package persistence

import (
	"context"

	"github.com/fixdesk/backend/internal/application/common"
	"github.com/fixdesk/backend/internal/domain/audit"
	"github.com/fixdesk/backend/internal/domain/finance"
	"github.com/fixdesk/backend/internal/domain/inventory"
	"github.com/fixdesk/backend/internal/domain/repair"
	"github.com/fixdesk/backend/internal/domain/trade"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("github.com/fixdesk/backend/internal/infrastructure/persistence")

// GormTransactionScope runs units of work in a GORM transaction
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn inside one transaction and one span. Any error returned
// by fn rolls the transaction back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos common.Repositories) error) error {
	ctx, span := tracer.Start(ctx, "TransactionScope.Execute")
	defer span.End()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// gormRepositories hands out repositories bound to one *gorm.DB, which is
// either a transaction or the plain connection for reads
type gormRepositories struct {
	db *gorm.DB
}

// NewRepositories binds every repository to db
func NewRepositories(db *gorm.DB) common.Repositories {
	return &gormRepositories{db: db}
}

func (r *gormRepositories) PartRepo() inventory.PartRepository {
	return NewGormPartRepository(r.db)
}

func (r *gormRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.db)
}

func (r *gormRepositories) PriceHistoryRepo() inventory.PriceHistoryRepository {
	return NewGormPriceHistoryRepository(r.db)
}

func (r *gormRepositories) CustomerInvoiceRepo() finance.CustomerInvoiceRepository {
	return NewGormCustomerInvoiceRepository(r.db)
}

func (r *gormRepositories) PaymentRepo() finance.PaymentRepository {
	return NewGormPaymentRepository(r.db)
}

func (r *gormRepositories) SupplierInvoiceRepo() finance.SupplierInvoiceRepository {
	return NewGormSupplierInvoiceRepository(r.db)
}

func (r *gormRepositories) SupplierPaymentRepo() finance.SupplierPaymentRepository {
	return NewGormSupplierPaymentRepository(r.db)
}

func (r *gormRepositories) CreditNoteRepo() finance.CreditNoteRepository {
	return NewGormCreditNoteRepository(r.db)
}

func (r *gormRepositories) PurchaseOrderRepo() trade.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.db)
}

func (r *gormRepositories) PurchaseReturnRepo() trade.PurchaseReturnRepository {
	return NewGormPurchaseReturnRepository(r.db)
}

func (r *gormRepositories) DeviceRepo() repair.DeviceRepository {
	return NewGormDeviceRepository(r.db)
}

func (r *gormRepositories) PartUsageRepo() repair.PartUsageRepository {
	return NewGormPartUsageRepository(r.db)
}

func (r *gormRepositories) AuditRepo() audit.Repository {
	return NewGormAuditRepository(r.db)
}

var _ common.TransactionScope = (*GormTransactionScope)(nil)
