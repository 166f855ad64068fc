package models

import (
	"github.com/fixdesk/backend/internal/domain/repair"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeviceModel is the persistence model for the Device aggregate root
type DeviceModel struct {
	AggregateModel
	CustomerID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Brand        string    `gorm:"type:varchar(100)"`
	Model        string    `gorm:"type:varchar(100);not null"`
	SerialNumber string    `gorm:"type:varchar(100);index"`
	Status       string    `gorm:"type:varchar(20);not null;default:'received';index"`
}

// TableName returns the table name for GORM
func (DeviceModel) TableName() string {
	return "devices"
}

// ToDomain converts the persistence model to a domain Device
func (m *DeviceModel) ToDomain() *repair.Device {
	return &repair.Device{
		BaseAggregateRoot: m.ToAggregateRoot(),
		CustomerID:        m.CustomerID,
		Brand:             m.Brand,
		Model:             m.Model,
		SerialNumber:      m.SerialNumber,
		Status:            repair.DeviceStatus(m.Status),
	}
}

// DeviceModelFromDomain creates a persistence model from a domain Device
func DeviceModelFromDomain(d *repair.Device) *DeviceModel {
	m := &DeviceModel{
		CustomerID:   d.CustomerID,
		Brand:        d.Brand,
		Model:        d.Model,
		SerialNumber: d.SerialNumber,
		Status:       string(d.Status),
	}
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	return m
}

// PartUsageModel records parts consumed by a repair ticket
type PartUsageModel struct {
	BaseModel
	TicketID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	PartID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UsedBy    string          `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (PartUsageModel) TableName() string {
	return "ticket_part_usages"
}

// ToDomain converts the persistence model to a domain PartUsage
func (m *PartUsageModel) ToDomain() *repair.PartUsage {
	return &repair.PartUsage{
		BaseEntity: m.BaseModel.ToDomain(),
		TicketID:   m.TicketID,
		PartID:     m.PartID,
		Quantity:   m.Quantity,
		UnitPrice:  m.UnitPrice,
		UsedBy:     m.UsedBy,
	}
}

// PartUsageModelFromDomain creates a persistence model from a domain PartUsage
func PartUsageModelFromDomain(u *repair.PartUsage) *PartUsageModel {
	m := &PartUsageModel{
		TicketID:  u.TicketID,
		PartID:    u.PartID,
		Quantity:  u.Quantity,
		UnitPrice: u.UnitPrice,
		UsedBy:    u.UsedBy,
	}
	m.FromDomainBaseEntity(u.BaseEntity)
	return m
}
