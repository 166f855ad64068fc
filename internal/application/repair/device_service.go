package repair

import (
	"context"
	"fmt"

	"github.com/fixdesk/backend/internal/application/common"
	"github.com/fixdesk/backend/internal/domain/audit"
	"github.com/fixdesk/backend/internal/domain/repair"
	"github.com/google/uuid"
)

const devicesTable = "devices"

// DeviceService tracks customer devices through the shop
type DeviceService struct {
	runner *common.Runner
	repos  common.Repositories
}

// NewDeviceService creates a DeviceService
func NewDeviceService(runner *common.Runner, repos common.Repositories) *DeviceService {
	return &DeviceService{runner: runner, repos: repos}
}

// Register books a device in with status received
func (s *DeviceService) Register(ctx context.Context, req RegisterDeviceRequest, actor string) (*DeviceResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	device, err := repair.NewDevice(req.CustomerID, req.Brand, req.Model, req.SerialNumber)
	if err != nil {
		return nil, err
	}

	err = s.runner.Run(ctx, func(w *common.Work) error {
		device.CreatedAt = w.Now
		device.UpdatedAt = w.Now
		if err := w.Repos.DeviceRepo().Save(ctx, device); err != nil {
			return fmt.Errorf("failed to save device: %w", err)
		}
		w.Audit(actor, audit.ActionCreate, devicesTable, device.ID, nil, device.AuditSnapshot())
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToDeviceResponse(device)
	return &resp, nil
}

// ChangeStatus moves a device to another status. A returned device stays
// returned.
func (s *DeviceService) ChangeStatus(ctx context.Context, deviceID uuid.UUID, req ChangeDeviceStatusRequest, actor string) (*DeviceResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	var device *repair.Device
	err := s.runner.Run(ctx, func(w *common.Work) error {
		var err error
		device, err = w.Repos.DeviceRepo().FindByIDForUpdate(ctx, deviceID)
		if err != nil {
			return err
		}
		previous := device.Status
		if err := device.ChangeStatus(repair.DeviceStatus(req.Status)); err != nil {
			return err
		}
		if previous == device.Status {
			return nil
		}
		device.UpdatedAt = w.Now
		if err := w.Repos.DeviceRepo().Save(ctx, device); err != nil {
			return fmt.Errorf("failed to save device: %w", err)
		}
		w.Audit(actor, audit.ActionStatus, devicesTable, device.ID,
			map[string]any{"status": string(previous)},
			map[string]any{"status": string(device.Status)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToDeviceResponse(device)
	return &resp, nil
}

// GetDevice returns a device
func (s *DeviceService) GetDevice(ctx context.Context, deviceID uuid.UUID) (*DeviceResponse, error) {
	device, err := s.repos.DeviceRepo().FindByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	resp := ToDeviceResponse(device)
	return &resp, nil
}
