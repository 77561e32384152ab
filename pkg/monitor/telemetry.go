package monitor

import (
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"plantops.xyz/device-uptime-service/pkg/common"
	"plantops.xyz/device-uptime-service/pkg/models"
)

// All stored telemetry carries the standard evaluation tag; richer
// evaluation happens downstream.
const telemetryResultStandard = "std"

// ingestTelemetry validates and persists one submission. Validation is
// all-or-nothing: the first missing field fails the request before
// anything touches storage.
func (m *Monitor) ingestTelemetry(sub *models.TelemetrySubmission) (*models.TelemetrySummary, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameMonitorCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryTelemetry),
	)

	if sub == nil || sub.Metadata == nil {
		return nil, NewValidationError("Missing required field: metadata")
	}
	if sub.Sensors == nil {
		return nil, NewValidationError("Missing required field: sensors")
	}

	meta := sub.Metadata
	for _, field := range []struct {
		name  string
		value string
	}{
		{"plant", meta.Plant},
		{"line", meta.Line},
		{"machine", meta.Machine},
		{"position", meta.Position},
	} {
		if field.value == "" {
			return nil, MissingMetadataField(field.name)
		}
	}

	recordedAt := m.now()
	if meta.RecordedAt != nil {
		recordedAt = *meta.RecordedAt
	}

	var duration int64
	if meta.CollectionStart != nil && meta.CollectionEnd != nil {
		duration = int64(meta.CollectionEnd.Sub(*meta.CollectionStart).Seconds())
		if duration < 0 {
			duration = 0
		}
	}

	record := models.TelemetryRecord{
		DeviceID:        m.matchDevice(meta),
		Plant:           meta.Plant,
		Line:            meta.Line,
		Machine:         meta.Machine,
		Position:        meta.Position,
		OperatorName:    sub.OperatorName,
		RecordedAt:      recordedAt,
		DurationSeconds: duration,
		Result:          telemetryResultStandard,
		SampleCount: common.Reducer(sub.Sensors, func(acc int, s models.SensorCapture) int {
			return acc + len(s.Values)
		}, 0),
	}
	if meta.SensorCount != nil {
		record.SensorCount = *meta.SensorCount
	}
	if meta.PeakValue != nil {
		record.PeakValue = *meta.PeakValue
	}

	payload := sub.Raw
	if payload == nil {
		encoded, err := json.Marshal(sub)
		if err != nil {
			return nil, err
		}
		payload = encoded
	}
	record.Payload = datatypes.JSON(payload)

	logger.Info("Received telemetry submission",
		zap.String("plant", meta.Plant),
		zap.String("line", meta.Line),
		zap.String("machine", meta.Machine),
		zap.String("position", meta.Position))

	if err := m.Db.Conn.Create(&record).Error; err != nil {
		return nil, err
	}

	logger.Info("Stored telemetry record", zap.Uint("id", record.ID))

	return &models.TelemetrySummary{
		ID:              record.ID,
		DeviceID:        record.DeviceID,
		Plant:           record.Plant,
		Line:            record.Line,
		Machine:         record.Machine,
		Position:        record.Position,
		RecordedAt:      record.RecordedAt,
		DurationSeconds: record.DurationSeconds,
		Result:          record.Result,
		SensorCount:     record.SensorCount,
		SampleCount:     record.SampleCount,
		PeakValue:       record.PeakValue,
	}, nil
}

// matchDevice links a submission to a registered device when exactly
// one active device fits the plant/line/machine identifiers.
func (m *Monitor) matchDevice(meta *models.TelemetryMetadata) string {
	var devices []models.Device
	err := m.Db.Conn.
		Where("plant = ? AND line = ? AND name = ? AND active = ?",
			meta.Plant, meta.Line, meta.Machine, true).
		Limit(2).
		Find(&devices).Error
	if err != nil || len(devices) != 1 {
		return ""
	}
	return devices[0].ID
}

type ITelemetryImpl struct {
	monitor *Monitor
}

func (it *ITelemetryImpl) Ingest(sub *models.TelemetrySubmission) (*models.TelemetrySummary, error) {
	return it.monitor.ingestTelemetry(sub)
}

func (m *Monitor) GetITelemetry() ITelemetry {
	return &ITelemetryImpl{monitor: m}
}
