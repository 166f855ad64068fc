package persistence

import (
	"context"
	"time"

	"github.com/fixdesk/backend/internal/domain/finance"
	"github.com/fixdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSupplierInvoiceRepository implements SupplierInvoiceRepository using GORM
type GormSupplierInvoiceRepository struct {
	db *gorm.DB
}

// NewGormSupplierInvoiceRepository creates a new GormSupplierInvoiceRepository
func NewGormSupplierInvoiceRepository(db *gorm.DB) *GormSupplierInvoiceRepository {
	return &GormSupplierInvoiceRepository{db: db}
}

// FindByID finds a supplier invoice by its ID
func (r *GormSupplierInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.SupplierInvoice, error) {
	var model models.SupplierInvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, "supplier invoice", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a supplier invoice and locks its row
func (r *GormSupplierInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*finance.SupplierInvoice, error) {
	var model models.SupplierInvoiceModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, "supplier invoice", id)
	}
	return model.ToDomain(), nil
}

// FindByPurchaseOrder finds the invoice opened for a purchase order
func (r *GormSupplierInvoiceRepository) FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) (*finance.SupplierInvoice, error) {
	var model models.SupplierInvoiceModel
	if err := r.db.WithContext(ctx).
		Where("purchase_order_id = ?", purchaseOrderID).
		Order("created_at ASC").
		First(&model).Error; err != nil {
		return nil, translate(err, "supplier invoice for purchase order", purchaseOrderID)
	}
	return model.ToDomain(), nil
}

// FindAll lists supplier invoices with filtering and pagination
func (r *GormSupplierInvoiceRepository) FindAll(ctx context.Context, filter finance.SupplierInvoiceFilter) ([]finance.SupplierInvoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SupplierInvoiceModel{})
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("invoice_number LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SupplierInvoiceModel
	if err := query.
		Order(supplierInvoiceSort.order(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	invoices := make([]finance.SupplierInvoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices, total, nil
}

// FindPastDue returns pending or partial invoices due before asOf
func (r *GormSupplierInvoiceRepository) FindPastDue(ctx context.Context, asOf time.Time) ([]finance.SupplierInvoice, error) {
	var rows []models.SupplierInvoiceModel
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND due_date IS NOT NULL AND due_date < ?",
			[]string{string(finance.SupplierInvoiceStatusPending), string(finance.SupplierInvoiceStatusPartial)}, asOf).
		Order("due_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	invoices := make([]finance.SupplierInvoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices, nil
}

// CountByNumberPrefix counts invoice numbers of the form prefix-N
func (r *GormSupplierInvoiceRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SupplierInvoiceModel{}).
		Where("invoice_number LIKE ?", prefixPattern(prefix)).
		Count(&count).Error
	return count, err
}

// Save creates or updates a supplier invoice
func (r *GormSupplierInvoiceRepository) Save(ctx context.Context, invoice *finance.SupplierInvoice) error {
	return translateWrite(r.db.WithContext(ctx).Save(models.SupplierInvoiceModelFromDomain(invoice)).Error, "supplier invoice")
}

// GormSupplierPaymentRepository implements SupplierPaymentRepository using GORM
type GormSupplierPaymentRepository struct {
	db *gorm.DB
}

// NewGormSupplierPaymentRepository creates a new GormSupplierPaymentRepository
func NewGormSupplierPaymentRepository(db *gorm.DB) *GormSupplierPaymentRepository {
	return &GormSupplierPaymentRepository{db: db}
}

// FindByID finds a supplier payment by its ID
func (r *GormSupplierPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.SupplierPayment, error) {
	var model models.SupplierPaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, "supplier payment", id)
	}
	return model.ToDomain(), nil
}

// FindByInvoice lists an invoice's payments in the order they were made
func (r *GormSupplierPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]finance.SupplierPayment, error) {
	var rows []models.SupplierPaymentModel
	if err := r.db.WithContext(ctx).
		Where("supplier_invoice_id = ?", invoiceID).
		Order("paid_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	payments := make([]finance.SupplierPayment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, nil
}

// Create inserts a supplier payment
func (r *GormSupplierPaymentRepository) Create(ctx context.Context, payment *finance.SupplierPayment) error {
	return r.db.WithContext(ctx).Create(models.SupplierPaymentModelFromDomain(payment)).Error
}

// Save updates a supplier payment
func (r *GormSupplierPaymentRepository) Save(ctx context.Context, payment *finance.SupplierPayment) error {
	return r.db.WithContext(ctx).Save(models.SupplierPaymentModelFromDomain(payment)).Error
}

// Delete removes a supplier payment
func (r *GormSupplierPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.SupplierPaymentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "supplier payment", id)
	}
	return nil
}

var (
	_ finance.SupplierInvoiceRepository = (*GormSupplierInvoiceRepository)(nil)
	_ finance.SupplierPaymentRepository = (*GormSupplierPaymentRepository)(nil)
)
