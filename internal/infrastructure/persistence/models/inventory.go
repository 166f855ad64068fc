package models

import (
	"time"

	"github.com/fixdesk/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartModel is the persistence model for the Part aggregate root
type PartModel struct {
	AggregateModel
	SKU           string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Barcode       string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name          string          `gorm:"type:varchar(200);not null;index"`
	Brand         string          `gorm:"type:varchar(100);index"`
	Category      string          `gorm:"type:varchar(100);index"`
	Model         string          `gorm:"type:varchar(100)"`
	Description   string          `gorm:"type:text"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CurrentStock  int             `gorm:"not null;default:0"`
	MinStockLevel int             `gorm:"not null;default:0"`
	IsActive      bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (PartModel) TableName() string {
	return "parts"
}

// ToDomain converts the persistence model to a domain Part
func (m *PartModel) ToDomain() *inventory.Part {
	return &inventory.Part{
		BaseAggregateRoot: m.ToAggregateRoot(),
		SKU:               m.SKU,
		Barcode:           m.Barcode,
		Name:              m.Name,
		Brand:             m.Brand,
		Category:          m.Category,
		Model:             m.Model,
		Description:       m.Description,
		CostPrice:         m.CostPrice,
		SellingPrice:      m.SellingPrice,
		CurrentStock:      m.CurrentStock,
		MinStockLevel:     m.MinStockLevel,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Part
func (m *PartModel) FromDomain(p *inventory.Part) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.SKU = p.SKU
	m.Barcode = p.Barcode
	m.Name = p.Name
	m.Brand = p.Brand
	m.Category = p.Category
	m.Model = p.Model
	m.Description = p.Description
	m.CostPrice = p.CostPrice
	m.SellingPrice = p.SellingPrice
	m.CurrentStock = p.CurrentStock
	m.MinStockLevel = p.MinStockLevel
	m.IsActive = p.IsActive
}

// PartModelFromDomain creates a new persistence model from a domain Part
func PartModelFromDomain(p *inventory.Part) *PartModel {
	m := &PartModel{}
	m.FromDomain(p)
	return m
}

// StockMovementModel is one append-only ledger row
type StockMovementModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key"`
	PartID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_stock_movement_part_created,priority:1"`
	Delta         int        `gorm:"not null"`
	BalanceBefore int        `gorm:"not null"`
	BalanceAfter  int        `gorm:"not null"`
	ReferenceType string     `gorm:"type:varchar(30);not null;index"`
	ReferenceID   *uuid.UUID `gorm:"type:uuid;index"`
	Note          string     `gorm:"type:text"`
	Actor         string     `gorm:"type:varchar(100)"`
	CreatedAt     time.Time  `gorm:"not null;index:idx_stock_movement_part_created,priority:2"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement
func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	refID := uuid.Nil
	if m.ReferenceID != nil {
		refID = *m.ReferenceID
	}
	return &inventory.StockMovement{
		ID:            m.ID,
		PartID:        m.PartID,
		Delta:         m.Delta,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		ReferenceType: inventory.ReferenceType(m.ReferenceType),
		ReferenceID:   refID,
		Note:          m.Note,
		Actor:         m.Actor,
		CreatedAt:     m.CreatedAt,
	}
}

// StockMovementModelFromDomain creates a persistence model from a movement.
// A nil reference id is stored as NULL.
func StockMovementModelFromDomain(s *inventory.StockMovement) *StockMovementModel {
	m := &StockMovementModel{
		ID:            s.ID,
		PartID:        s.PartID,
		Delta:         s.Delta,
		BalanceBefore: s.BalanceBefore,
		BalanceAfter:  s.BalanceAfter,
		ReferenceType: string(s.ReferenceType),
		Note:          s.Note,
		Actor:         s.Actor,
		CreatedAt:     s.CreatedAt,
	}
	if s.ReferenceID != uuid.Nil {
		ref := s.ReferenceID
		m.ReferenceID = &ref
	}
	return m
}

// PriceHistoryModel is one append-only cost change
type PriceHistoryModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	PartID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	OldPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	NewPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason    string          `gorm:"type:varchar(500)"`
	Actor     string          `gorm:"type:varchar(100)"`
	ChangedAt time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PriceHistoryModel) TableName() string {
	return "part_price_history"
}

// ToDomain converts the persistence model to a domain PriceHistory
func (m *PriceHistoryModel) ToDomain() *inventory.PriceHistory {
	return &inventory.PriceHistory{
		ID:        m.ID,
		PartID:    m.PartID,
		OldPrice:  m.OldPrice,
		NewPrice:  m.NewPrice,
		Reason:    m.Reason,
		Actor:     m.Actor,
		ChangedAt: m.ChangedAt,
	}
}

// PriceHistoryModelFromDomain creates a persistence model from a history row
func PriceHistoryModelFromDomain(h *inventory.PriceHistory) *PriceHistoryModel {
	return &PriceHistoryModel{
		ID:        h.ID,
		PartID:    h.PartID,
		OldPrice:  h.OldPrice,
		NewPrice:  h.NewPrice,
		Reason:    h.Reason,
		Actor:     h.Actor,
		ChangedAt: h.ChangedAt,
	}
}
