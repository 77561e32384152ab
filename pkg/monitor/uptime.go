package monitor

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"plantops.xyz/device-uptime-service/pkg/common"
	"plantops.xyz/device-uptime-service/pkg/models"
)

// stateStore keeps per-device last-known state: device_id -> deviceState.
// Each entry carries its own mutex so writes for one device serialize
// without blocking writes for any other device.
type stateStore struct {
	mu     sync.Mutex
	states map[string]*deviceState
}

type deviceState struct {
	mu            sync.Mutex
	seeded        bool
	hasLast       bool
	lastStatus    models.DeviceStatus
	lastTimestamp time.Time
}

func (s *stateStore) get(deviceID string) *deviceState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, exists := s.states[deviceID]
	if !exists {
		state = &deviceState{}
		s.states[deviceID] = state
	}
	return state
}

func (m *Monitor) stateFor(deviceID string) *deviceState {
	m.statesOnce.Do(func() {
		m.states = &stateStore{states: make(map[string]*deviceState)}
	})
	return m.states.get(deviceID)
}

// recordEvent appends a state transition for a device. Only Status,
// Message, ErrorType and TimeoutSeconds are taken from the input;
// timestamp and duration are computed here, never trusted from callers.
// Same-state repeats are suppressed and return created=false.
func (m *Monitor) recordEvent(deviceID string, input *models.UptimeEvent) (*models.UptimeEvent, bool, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameMonitorCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryUptime),
	)

	if _, err := m.getDevice(deviceID); err != nil {
		return nil, false, err
	}

	state := m.stateFor(deviceID)
	state.mu.Lock()
	defer state.mu.Unlock()

	if !state.seeded {
		var last models.UptimeEvent
		err := m.Db.Conn.
			Where("device_id = ?", deviceID).
			Order("timestamp desc").
			First(&last).Error
		switch {
		case err == nil:
			state.hasLast = true
			state.lastStatus = last.Status
			state.lastTimestamp = last.Timestamp
		case errors.Is(err, gorm.ErrRecordNotFound):
			// first-ever check for this device
		default:
			return nil, false, err
		}
		state.seeded = true
	}

	if state.hasLast && state.lastStatus == input.Status {
		logger.Debug("Suppressed same-state event",
			zap.String("device_id", deviceID),
			zap.String("status", string(input.Status)))
		return nil, false, nil
	}

	now := m.now()
	var duration int64
	if state.hasLast {
		// keep per-device timestamps strictly increasing even when
		// the clock reads backwards
		if !now.After(state.lastTimestamp) {
			now = state.lastTimestamp.Add(time.Millisecond)
		}
		duration = int64(now.Sub(state.lastTimestamp).Seconds())
	}

	event := models.UptimeEvent{
		DeviceID:        deviceID,
		Status:          input.Status,
		Timestamp:       now,
		Message:         input.Message,
		DurationSeconds: duration,
		ErrorType:       input.ErrorType,
	}
	if input.Status == models.StatusTimeout {
		event.TimeoutSeconds = input.TimeoutSeconds
		event.ErrorType = models.ErrorTypeTimeout
	}

	if err := m.Db.Conn.Create(&event).Error; err != nil {
		return nil, false, err
	}

	state.hasLast = true
	state.lastStatus = event.Status
	state.lastTimestamp = now

	logger.Info("Recorded uptime event", zap.Reflect("event", event))
	return &event, true, nil
}

func (m *Monitor) queryEvents(deviceID string, from, to time.Time) ([]models.UptimeEvent, error) {
	query := m.Db.Conn.Where("device_id = ?", deviceID)
	if !from.IsZero() {
		query = query.Where("timestamp >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("timestamp <= ?", to)
	}

	var events []models.UptimeEvent
	err := query.Order("timestamp asc").Find(&events).Error
	return events, err
}

type IUptimeImpl struct {
	monitor *Monitor
}

func (iu *IUptimeImpl) Record(deviceID string, input *models.UptimeEvent) (*models.UptimeEvent, bool, error) {
	return iu.monitor.recordEvent(deviceID, input)
}

func (iu *IUptimeImpl) Query(deviceID string, from, to time.Time) ([]models.UptimeEvent, error) {
	return iu.monitor.queryEvents(deviceID, from, to)
}

func (m *Monitor) GetIUptime() IUptime {
	return &IUptimeImpl{monitor: m}
}
