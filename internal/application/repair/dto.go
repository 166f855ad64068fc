package repair

import (
	"time"

	"github.com/fixdesk/backend/internal/domain/repair"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConsumePartRequest records parts put into a repair. UnitPrice defaults to
// the part's selling price.
type ConsumePartRequest struct {
	TicketID  uuid.UUID        `json:"ticket_id" validate:"required"`
	PartID    uuid.UUID        `json:"part_id" validate:"required"`
	Quantity  int              `json:"quantity" validate:"gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// ChangeQuantityRequest changes how many parts a usage consumed
type ChangeQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gt=0"`
}

// UsageResponse is the read model of a ticket part usage
type UsageResponse struct {
	ID        uuid.UUID       `json:"id"`
	TicketID  uuid.UUID       `json:"ticket_id"`
	PartID    uuid.UUID       `json:"part_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UsedBy    string          `json:"used_by"`
	CreatedAt time.Time       `json:"created_at"`
	// StockAfter is the part's stock once the usage was booked
	StockAfter int `json:"stock_after"`
}

// ToUsageResponse converts a domain usage
func ToUsageResponse(u *repair.PartUsage, stockAfter int) UsageResponse {
	return UsageResponse{
		ID:         u.ID,
		TicketID:   u.TicketID,
		PartID:     u.PartID,
		Quantity:   u.Quantity,
		UnitPrice:  u.UnitPrice,
		UsedBy:     u.UsedBy,
		CreatedAt:  u.CreatedAt,
		StockAfter: stockAfter,
	}
}

// RegisterDeviceRequest books a customer device in for repair
type RegisterDeviceRequest struct {
	CustomerID   uuid.UUID `json:"customer_id" validate:"required"`
	Brand        string    `json:"brand" validate:"max=100"`
	Model        string    `json:"model" validate:"required,max=100"`
	SerialNumber string    `json:"serial_number" validate:"max=100"`
}

// ChangeDeviceStatusRequest moves a device through the repair
type ChangeDeviceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=received in_repair repaired returned"`
}

// DeviceResponse is the read model of a device
type DeviceResponse struct {
	ID           uuid.UUID `json:"id"`
	CustomerID   uuid.UUID `json:"customer_id"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	SerialNumber string    `json:"serial_number"`
	Status       string    `json:"status"`
	Version      int       `json:"version"`
}

// ToDeviceResponse converts a domain device
func ToDeviceResponse(d *repair.Device) DeviceResponse {
	return DeviceResponse{
		ID:           d.ID,
		CustomerID:   d.CustomerID,
		Brand:        d.Brand,
		Model:        d.Model,
		SerialNumber: d.SerialNumber,
		Status:       string(d.Status),
		Version:      d.Version,
	}
}
