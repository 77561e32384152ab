package monitor

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"plantops.xyz/device-uptime-service/pkg/common"
	"plantops.xyz/device-uptime-service/pkg/models"
)

func (m *Monitor) listActive() ([]models.Device, error) {
	var devices []models.Device
	err := m.Db.Conn.
		Where("active = ?", true).
		Order("plant, line, name").
		Find(&devices).Error
	return devices, err
}

func (m *Monitor) getDevice(deviceID string) (*models.Device, error) {
	var device models.Device
	if err := m.Db.Conn.First(&device, "id = ?", deviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &device, nil
}

func (m *Monitor) upsertDevice(input *models.Device) (*models.Device, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameMonitorCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryRegistry),
	)

	if input.Address == "" {
		return nil, NewValidationError("device address is required")
	}
	if input.TimeoutSeconds <= 0 {
		return nil, NewValidationError("device timeout must be positive")
	}

	// address must be unique among active devices
	if input.Active {
		var count int64
		query := m.Db.Conn.Model(&models.Device{}).
			Where("address = ? AND active = ?", input.Address, true)
		if input.ID != "" {
			query = query.Where("id <> ?", input.ID)
		}
		if err := query.Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, NewValidationError("address %q already in use by an active device", input.Address)
		}
	}

	logger.Info("Received device for upsert", zap.Reflect("device", input))

	if input.ID == "" {
		if err := m.Db.Conn.Create(input).Error; err != nil {
			return nil, err
		}
		logger.Info("Registered device", zap.Reflect("device", input))
		return input, nil
	}

	existing, err := m.getDevice(input.ID)
	if err != nil {
		return nil, err
	}

	existing.Name = input.Name
	existing.Address = input.Address
	existing.Plant = input.Plant
	existing.Line = input.Line
	existing.DeviceType = input.DeviceType
	existing.TimeoutSeconds = input.TimeoutSeconds
	existing.Active = input.Active
	if err := m.Db.Conn.Save(existing).Error; err != nil {
		return nil, err
	}

	logger.Info("Updated device", zap.Reflect("device", existing))
	return existing, nil
}

func (m *Monitor) deactivateDevice(deviceID string) error {
	logger := common.GetLoggerWith(
		common.LoggerNameMonitorCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryRegistry),
	)

	// soft lifecycle: flip the flag, keep events and telemetry
	result := m.Db.Conn.Model(&models.Device{}).
		Where("id = ?", deviceID).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	logger.Info("Deactivated device", zap.String("device_id", deviceID))
	return nil
}

type IRegistryImpl struct {
	monitor *Monitor
}

func (ir *IRegistryImpl) ListActive() ([]models.Device, error) {
	return ir.monitor.listActive()
}

func (ir *IRegistryImpl) Get(deviceID string) (*models.Device, error) {
	return ir.monitor.getDevice(deviceID)
}

func (ir *IRegistryImpl) Upsert(input *models.Device) (*models.Device, error) {
	return ir.monitor.upsertDevice(input)
}

func (ir *IRegistryImpl) Deactivate(deviceID string) error {
	return ir.monitor.deactivateDevice(deviceID)
}

func (m *Monitor) GetIRegistry() IRegistry {
	return &IRegistryImpl{monitor: m}
}
