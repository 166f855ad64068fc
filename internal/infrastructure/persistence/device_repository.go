package persistence

import (
	"context"

	"github.com/fixdesk/backend/internal/domain/repair"
	"github.com/fixdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDeviceRepository implements DeviceRepository using GORM
type GormDeviceRepository struct {
	db *gorm.DB
}

// NewGormDeviceRepository creates a new GormDeviceRepository
func NewGormDeviceRepository(db *gorm.DB) *GormDeviceRepository {
	return &GormDeviceRepository{db: db}
}

// FindByID finds a device by its ID
func (r *GormDeviceRepository) FindByID(ctx context.Context, id uuid.UUID) (*repair.Device, error) {
	var model models.DeviceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, "device", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a device and locks its row
func (r *GormDeviceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*repair.Device, error) {
	var model models.DeviceModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, "device", id)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a device
func (r *GormDeviceRepository) Save(ctx context.Context, device *repair.Device) error {
	return r.db.WithContext(ctx).Save(models.DeviceModelFromDomain(device)).Error
}

// GormPartUsageRepository implements PartUsageRepository using GORM
type GormPartUsageRepository struct {
	db *gorm.DB
}

// NewGormPartUsageRepository creates a new GormPartUsageRepository
func NewGormPartUsageRepository(db *gorm.DB) *GormPartUsageRepository {
	return &GormPartUsageRepository{db: db}
}

// FindByID finds a usage record by its ID
func (r *GormPartUsageRepository) FindByID(ctx context.Context, id uuid.UUID) (*repair.PartUsage, error) {
	var model models.PartUsageModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, "part usage", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a usage record and locks its row
func (r *GormPartUsageRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*repair.PartUsage, error) {
	var model models.PartUsageModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, "part usage", id)
	}
	return model.ToDomain(), nil
}

// FindByTicket lists the parts used on a ticket
func (r *GormPartUsageRepository) FindByTicket(ctx context.Context, ticketID uuid.UUID) ([]repair.PartUsage, error) {
	var rows []models.PartUsageModel
	if err := r.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	usages := make([]repair.PartUsage, len(rows))
	for i := range rows {
		usages[i] = *rows[i].ToDomain()
	}
	return usages, nil
}

// Create inserts a usage record
func (r *GormPartUsageRepository) Create(ctx context.Context, usage *repair.PartUsage) error {
	return r.db.WithContext(ctx).Create(models.PartUsageModelFromDomain(usage)).Error
}

// Save updates a usage record
func (r *GormPartUsageRepository) Save(ctx context.Context, usage *repair.PartUsage) error {
	return r.db.WithContext(ctx).Save(models.PartUsageModelFromDomain(usage)).Error
}

// Delete removes a usage record
func (r *GormPartUsageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PartUsageModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "part usage", id)
	}
	return nil
}

var (
	_ repair.DeviceRepository    = (*GormDeviceRepository)(nil)
	_ repair.PartUsageRepository = (*GormPartUsageRepository)(nil)
)
