package repair

import (
	"fmt"
	"strings"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeDevice is the aggregate type name for devices
const AggregateTypeDevice = "Device"

// DeviceStatus tracks where a customer's device is
type DeviceStatus string

const (
	DeviceStatusReceived DeviceStatus = "received"
	DeviceStatusInRepair DeviceStatus = "in_repair"
	DeviceStatusRepaired DeviceStatus = "repaired"
	DeviceStatusReturned DeviceStatus = "returned"
)

// IsValid checks if the status is a valid DeviceStatus
func (s DeviceStatus) IsValid() bool {
	switch s {
	case DeviceStatusReceived, DeviceStatusInRepair, DeviceStatusRepaired, DeviceStatusReturned:
		return true
	}
	return false
}

// Device is a customer device checked into the shop
type Device struct {
	shared.BaseAggregateRoot
	CustomerID   uuid.UUID
	Brand        string
	Model        string
	SerialNumber string
	Status       DeviceStatus
}

// NewDevice checks a device in
func NewDevice(customerID uuid.UUID, brand, model, serial string) (*Device, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if strings.TrimSpace(model) == "" {
		return nil, shared.NewValidationError("INVALID_MODEL", "Device model cannot be empty")
	}
	return &Device{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		Brand:             strings.TrimSpace(brand),
		Model:             strings.TrimSpace(model),
		SerialNumber:      strings.TrimSpace(serial),
		Status:            DeviceStatusReceived,
	}, nil
}

// ChangeStatus moves the device to any status except back from returned
func (d *Device) ChangeStatus(status DeviceStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("INVALID_STATUS", "Unknown device status: "+string(status))
	}
	if d.Status == DeviceStatusReturned && status != DeviceStatusReturned {
		return shared.NewInvalidStateError("INVALID_STATE",
			fmt.Sprintf("Device already returned, cannot move to %s", status))
	}
	if d.Status == status {
		return nil
	}
	d.Status = status
	d.IncrementVersion()
	return nil
}

// MarkReturned records that the device left the shop. Invoicing a device
// always implies this, whatever its previous status.
func (d *Device) MarkReturned() bool {
	if d.Status == DeviceStatusReturned {
		return false
	}
	d.Status = DeviceStatusReturned
	d.IncrementVersion()
	return true
}

// AuditSnapshot returns the fields recorded in audit entries
func (d *Device) AuditSnapshot() map[string]any {
	return map[string]any{
		"customer_id": d.CustomerID.String(),
		"model":       d.Model,
		"status":      string(d.Status),
	}
}
