package persistence

import (
	"context"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/fixdesk/backend/internal/domain/trade"
	"github.com/fixdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order by its ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, "purchase order", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a purchase order and locks its row
func (r *GormPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := forUpdate(r.db.WithContext(ctx)).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, "purchase order", id)
	}
	return model.ToDomain(), nil
}

// FindAll lists purchase orders with pagination
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.PurchaseOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{})
	if filter.Search != "" {
		query = query.Where("order_number LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.PurchaseOrderModel
	if err := query.Preload("Items").
		Order(purchaseOrderSort.order(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]trade.PurchaseOrder, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, total, nil
}

// CountByNumberPrefix counts order numbers of the form prefix-N
func (r *GormPurchaseOrderRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Where("order_number LIKE ?", prefixPattern(prefix)).
		Count(&count).Error
	return count, err
}

// Save creates or updates a purchase order and its items
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *trade.PurchaseOrder) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(models.PurchaseOrderModelFromDomain(order)).Error; err != nil {
			return err
		}

		keep := make([]uuid.UUID, len(order.Items))
		for i := range order.Items {
			keep[i] = order.Items[i].ID
		}
		stale := tx.Where("order_id = ?", order.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&models.PurchaseOrderItemModel{}).Error; err != nil {
			return err
		}

		for i := range order.Items {
			order.Items[i].OrderID = order.ID
			if err := tx.Save(models.PurchaseOrderItemModelFromDomain(&order.Items[i])).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translateWrite(err, "purchase order")
}

// GormPurchaseReturnRepository implements PurchaseReturnRepository using GORM
type GormPurchaseReturnRepository struct {
	db *gorm.DB
}

// NewGormPurchaseReturnRepository creates a new GormPurchaseReturnRepository
func NewGormPurchaseReturnRepository(db *gorm.DB) *GormPurchaseReturnRepository {
	return &GormPurchaseReturnRepository{db: db}
}

// FindByID finds a purchase return by its ID
func (r *GormPurchaseReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseReturn, error) {
	var model models.PurchaseReturnModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, "purchase return", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a purchase return and locks its row
func (r *GormPurchaseReturnRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.PurchaseReturn, error) {
	var model models.PurchaseReturnModel
	if err := forUpdate(r.db.WithContext(ctx)).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, "purchase return", id)
	}
	return model.ToDomain(), nil
}

// FindByPurchaseOrder lists the returns raised against a purchase order
func (r *GormPurchaseReturnRepository) FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]trade.PurchaseReturn, error) {
	var rows []models.PurchaseReturnModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("purchase_order_id = ?", purchaseOrderID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	returns := make([]trade.PurchaseReturn, len(rows))
	for i := range rows {
		returns[i] = *rows[i].ToDomain()
	}
	return returns, nil
}

// FindAll lists purchase returns with pagination
func (r *GormPurchaseReturnRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.PurchaseReturn, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PurchaseReturnModel{})
	if filter.Search != "" {
		query = query.Where("return_number LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.PurchaseReturnModel
	if err := query.Preload("Items").
		Order(purchaseReturnSort.order(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	returns := make([]trade.PurchaseReturn, len(rows))
	for i := range rows {
		returns[i] = *rows[i].ToDomain()
	}
	return returns, total, nil
}

// CountByNumberPrefix counts return numbers of the form prefix-N
func (r *GormPurchaseReturnRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PurchaseReturnModel{}).
		Where("return_number LIKE ?", prefixPattern(prefix)).
		Count(&count).Error
	return count, err
}

// Save creates or updates a purchase return and its items
func (r *GormPurchaseReturnRepository) Save(ctx context.Context, ret *trade.PurchaseReturn) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(models.PurchaseReturnModelFromDomain(ret)).Error; err != nil {
			return err
		}

		keep := make([]uuid.UUID, len(ret.Items))
		for i := range ret.Items {
			keep[i] = ret.Items[i].ID
		}
		stale := tx.Where("return_id = ?", ret.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&models.PurchaseReturnItemModel{}).Error; err != nil {
			return err
		}

		for i := range ret.Items {
			ret.Items[i].ReturnID = ret.ID
			if err := tx.Save(models.PurchaseReturnItemModelFromDomain(&ret.Items[i])).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translateWrite(err, "purchase return")
}

var (
	_ trade.PurchaseOrderRepository  = (*GormPurchaseOrderRepository)(nil)
	_ trade.PurchaseReturnRepository = (*GormPurchaseReturnRepository)(nil)
)
