package models

import (
	"time"

	"github.com/fixdesk/backend/internal/domain/audit"
	"github.com/google/uuid"
)

// AuditLogModel is one append-only audit row
type AuditLogModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Actor       string    `gorm:"type:varchar(100);index"`
	Action      string    `gorm:"type:varchar(30);not null;index"`
	EntityTable string    `gorm:"type:varchar(50);not null;index:idx_audit_entity,priority:1"`
	EntityID    uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_entity,priority:2"`
	OldData     JSONMap
	NewData     JSONMap
	IPAddress   string    `gorm:"type:varchar(45)"`
	Timestamp   time.Time `gorm:"column:occurred_at;not null;index"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// ToDomain converts the persistence model to a domain Entry
func (m *AuditLogModel) ToDomain() *audit.Entry {
	return &audit.Entry{
		ID:          m.ID,
		Actor:       m.Actor,
		Action:      audit.Action(m.Action),
		EntityTable: m.EntityTable,
		EntityID:    m.EntityID,
		OldData:     audit.Snapshot(m.OldData),
		NewData:     audit.Snapshot(m.NewData),
		IPAddress:   m.IPAddress,
		Timestamp:   m.Timestamp,
	}
}

// AuditLogModelFromDomain creates a persistence model from a domain Entry
func AuditLogModelFromDomain(e *audit.Entry) *AuditLogModel {
	return &AuditLogModel{
		ID:          e.ID,
		Actor:       e.Actor,
		Action:      string(e.Action),
		EntityTable: e.EntityTable,
		EntityID:    e.EntityID,
		OldData:     JSONMap(e.OldData),
		NewData:     JSONMap(e.NewData),
		IPAddress:   e.IPAddress,
		Timestamp:   e.Timestamp,
	}
}
