package persistence

import (
	"context"

	"github.com/fixdesk/backend/internal/domain/finance"
	"github.com/fixdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCustomerInvoiceRepository implements CustomerInvoiceRepository using GORM
type GormCustomerInvoiceRepository struct {
	db *gorm.DB
}

// NewGormCustomerInvoiceRepository creates a new GormCustomerInvoiceRepository
func NewGormCustomerInvoiceRepository(db *gorm.DB) *GormCustomerInvoiceRepository {
	return &GormCustomerInvoiceRepository{db: db}
}

// FindByID finds an invoice with its items
func (r *GormCustomerInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.CustomerInvoice, error) {
	var model models.CustomerInvoiceModel
	if err := r.db.WithContext(ctx).Preload("Items").First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, "customer invoice", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an invoice and locks its row
func (r *GormCustomerInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*finance.CustomerInvoice, error) {
	var model models.CustomerInvoiceModel
	if err := forUpdate(r.db.WithContext(ctx)).Preload("Items").First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, "customer invoice", id)
	}
	return model.ToDomain(), nil
}

// FindAll lists invoices with filtering and pagination
func (r *GormCustomerInvoiceRepository) FindAll(ctx context.Context, filter finance.InvoiceFilter) ([]finance.CustomerInvoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CustomerInvoiceModel{})
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("payment_status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("invoice_number LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CustomerInvoiceModel
	if err := query.Preload("Items").
		Order(customerInvoiceSort.order(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	invoices := make([]finance.CustomerInvoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices, total, nil
}

// CountByNumberPrefix counts invoice numbers of the form prefix-N
func (r *GormCustomerInvoiceRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CustomerInvoiceModel{}).
		Where("invoice_number LIKE ?", prefixPattern(prefix)).
		Count(&count).Error
	return count, err
}

// Save upserts the invoice and replaces its item rows
func (r *GormCustomerInvoiceRepository) Save(ctx context.Context, invoice *finance.CustomerInvoice) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.CustomerInvoiceModelFromDomain(invoice)
		if err := tx.Omit("Items").Save(model).Error; err != nil {
			return err
		}

		keep := make([]uuid.UUID, len(invoice.Items))
		for i := range invoice.Items {
			keep[i] = invoice.Items[i].ID
		}
		stale := tx.Where("invoice_id = ?", invoice.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}

		for i := range invoice.Items {
			invoice.Items[i].InvoiceID = invoice.ID
			if err := tx.Save(&model.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translateWrite(err, "invoice")
}

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, "payment", id)
	}
	return model.ToDomain(), nil
}

// FindByInvoice lists an invoice's payments in the order they were made
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]finance.Payment, error) {
	var rows []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("paid_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	payments := make([]finance.Payment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, nil
}

// SumByInvoice adds up an invoice's payments. The rows are summed in Go so
// the result is exact on every driver.
func (r *GormPaymentRepository) SumByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	if err := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("invoice_id = ?", invoiceID).
		Pluck("amount", &amounts).Error; err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(a)
	}
	return sum, nil
}

// Create inserts a payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *finance.Payment) error {
	return r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(payment)).Error
}

// Save updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	return r.db.WithContext(ctx).Save(models.PaymentModelFromDomain(payment)).Error
}

// Delete removes a payment
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PaymentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "payment", id)
	}
	return nil
}

var (
	_ finance.CustomerInvoiceRepository = (*GormCustomerInvoiceRepository)(nil)
	_ finance.PaymentRepository         = (*GormPaymentRepository)(nil)
)
