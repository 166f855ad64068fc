package persistence

import (
	"fmt"

	"github.com/fixdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table of the engine
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// TableStatus reports whether one engine table exists
type TableStatus struct {
	Table  string
	Exists bool
}

// MigrationStatus lists every engine table and whether it has been created
func MigrationStatus(db *gorm.DB) ([]TableStatus, error) {
	migrator := db.Migrator()
	all := models.All()
	out := make([]TableStatus, 0, len(all))
	for _, model := range all {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}
		out = append(out, TableStatus{
			Table:  stmt.Schema.Table,
			Exists: migrator.HasTable(model),
		})
	}
	return out, nil
}
