package persistence

import (
	"context"
	"strings"

	"github.com/fixdesk/backend/internal/domain/inventory"
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/fixdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPartRepository implements PartRepository using GORM
type GormPartRepository struct {
	db *gorm.DB
}

// NewGormPartRepository creates a new GormPartRepository
func NewGormPartRepository(db *gorm.DB) *GormPartRepository {
	return &GormPartRepository{db: db}
}

// FindByID finds a part by its ID
func (r *GormPartRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Part, error) {
	var model models.PartModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, "part", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a part and locks its row until the transaction ends
func (r *GormPartRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Part, error) {
	var model models.PartModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, "part", id)
	}
	return model.ToDomain(), nil
}

// FindBySKU finds a part by SKU
func (r *GormPartRepository) FindBySKU(ctx context.Context, sku string) (*inventory.Part, error) {
	var model models.PartModel
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if err := r.db.WithContext(ctx).First(&model, "sku = ?", sku).Error; err != nil {
		return nil, translate(err, "part with sku", stringer(sku))
	}
	return model.ToDomain(), nil
}

// FindAll lists parts with filtering and pagination
func (r *GormPartRepository) FindAll(ctx context.Context, filter inventory.PartFilter) ([]inventory.Part, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PartModel{})

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(barcode) LIKE ?", like, like, like)
	}
	if filter.Brand != "" {
		query = query.Where("brand = ?", filter.Brand)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.LowStock {
		query = query.Where("min_stock_level > 0 AND current_stock < min_stock_level")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.PartModel
	if err := query.
		Order(partSort.order(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	parts := make([]inventory.Part, len(rows))
	for i := range rows {
		parts[i] = *rows[i].ToDomain()
	}
	return parts, total, nil
}

// ExistsBySKU reports whether a SKU is taken
func (r *GormPartRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PartModel{}).
		Where("sku = ?", strings.ToUpper(strings.TrimSpace(sku))).
		Count(&count).Error
	return count > 0, err
}

// ExistsByBarcode reports whether a barcode is taken
func (r *GormPartRepository) ExistsByBarcode(ctx context.Context, barcode string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PartModel{}).
		Where("barcode = ?", strings.TrimSpace(barcode)).
		Count(&count).Error
	return count > 0, err
}

// CountBySKUPrefix counts SKUs of the form prefix-NN
func (r *GormPartRepository) CountBySKUPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PartModel{}).
		Where("sku LIKE ?", prefixPattern(prefix)).
		Count(&count).Error
	return count, err
}

// Save creates or updates a part
func (r *GormPartRepository) Save(ctx context.Context, part *inventory.Part) error {
	return translateWrite(r.db.WithContext(ctx).Save(models.PartModelFromDomain(part)).Error, "part")
}

// GormStockMovementRepository implements StockMovementRepository using GORM
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Create appends a ledger row
func (r *GormStockMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Create(models.StockMovementModelFromDomain(movement)).Error
}

// FindByPart lists a part's movements, newest first
func (r *GormStockMovementRepository) FindByPart(ctx context.Context, partID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StockMovementModel{}).Where("part_id = ?", partID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.StockMovementModel
	if err := query.Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	movements := make([]inventory.StockMovement, len(rows))
	for i := range rows {
		movements[i] = *rows[i].ToDomain()
	}
	return movements, total, nil
}

// SumDeltas returns the sum of all deltas booked for a part
func (r *GormStockMovementRepository) SumDeltas(ctx context.Context, partID uuid.UUID) (int, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&models.StockMovementModel{}).
		Where("part_id = ?", partID).
		Select("COALESCE(SUM(delta), 0)").
		Scan(&sum).Error
	return int(sum), err
}

// GormPriceHistoryRepository implements PriceHistoryRepository using GORM
type GormPriceHistoryRepository struct {
	db *gorm.DB
}

// NewGormPriceHistoryRepository creates a new GormPriceHistoryRepository
func NewGormPriceHistoryRepository(db *gorm.DB) *GormPriceHistoryRepository {
	return &GormPriceHistoryRepository{db: db}
}

// Create appends a cost change
func (r *GormPriceHistoryRepository) Create(ctx context.Context, entry *inventory.PriceHistory) error {
	return r.db.WithContext(ctx).Create(models.PriceHistoryModelFromDomain(entry)).Error
}

// FindByPart lists a part's cost changes, newest first
func (r *GormPriceHistoryRepository) FindByPart(ctx context.Context, partID uuid.UUID) ([]inventory.PriceHistory, error) {
	var rows []models.PriceHistoryModel
	if err := r.db.WithContext(ctx).
		Where("part_id = ?", partID).
		Order("changed_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	history := make([]inventory.PriceHistory, len(rows))
	for i := range rows {
		history[i] = *rows[i].ToDomain()
	}
	return history, nil
}

var (
	_ inventory.PartRepository          = (*GormPartRepository)(nil)
	_ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
	_ inventory.PriceHistoryRepository  = (*GormPriceHistoryRepository)(nil)
)
