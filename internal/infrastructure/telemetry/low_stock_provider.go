package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormLowStockCounter counts low stock parts straight from the parts table
type GormLowStockCounter struct {
	db *gorm.DB
}

// NewGormLowStockCounter creates a GormLowStockCounter
func NewGormLowStockCounter(db *gorm.DB) *GormLowStockCounter {
	return &GormLowStockCounter{db: db}
}

// CountLowStock returns the number of active parts below min_stock_level
func (p *GormLowStockCounter) CountLowStock(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("parts").
		Where("is_active = ? AND min_stock_level > 0 AND current_stock < min_stock_level", true).
		Count(&count).Error
	return count, err
}
