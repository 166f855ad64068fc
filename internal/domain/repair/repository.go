package repair

import (
	"context"

	"github.com/google/uuid"
)

// DeviceRepository persists devices
type DeviceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Device, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Device, error)
	Save(ctx context.Context, device *Device) error
}

// PartUsageRepository persists ticket part usage
type PartUsageRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PartUsage, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PartUsage, error)
	FindByTicket(ctx context.Context, ticketID uuid.UUID) ([]PartUsage, error)
	Create(ctx context.Context, usage *PartUsage) error
	Save(ctx context.Context, usage *PartUsage) error
	Delete(ctx context.Context, id uuid.UUID) error
}
