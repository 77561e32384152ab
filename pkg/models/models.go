package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DeviceStatus string

const (
	StatusOnline  DeviceStatus = "online"
	StatusOffline DeviceStatus = "offline"
	StatusTimeout DeviceStatus = "timeout"
	StatusIdle    DeviceStatus = "idle"
)

type ProbeErrorType string

const (
	ErrorTypeNone              ProbeErrorType = ""
	ErrorTypeConnectionRefused ProbeErrorType = "connection_refused"
	ErrorTypeDNSFailure        ProbeErrorType = "dns_failure"
	ErrorTypeTimeout           ProbeErrorType = "timeout"
)

// Device is a monitored endpoint. Devices are deactivated, not deleted,
// so historical events and telemetry keep resolving. A hard delete
// cascades the device's uptime events.
type Device struct {
	ID             string `gorm:"primaryKey"`
	Name           string
	Address        string `gorm:"index"`
	Plant          string `gorm:"index"`
	Line           string
	DeviceType     string
	TimeoutSeconds int
	Active         bool `gorm:"index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Events []UptimeEvent `gorm:"foreignKey:DeviceID;references:ID;constraint:OnDelete:CASCADE"`
}

func (d *Device) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// UptimeEvent is one state transition in a device's uptime history.
// Rows are append-only and strictly time-ordered per device;
// DurationSeconds is the time spent in the previous state.
type UptimeEvent struct {
	ID              uint         `gorm:"primaryKey"`
	DeviceID        string       `gorm:"index"`
	Status          DeviceStatus `gorm:"type:varchar(10);check:status IN ('online','offline','timeout','idle')"`
	Timestamp       time.Time    `gorm:"index"`
	Message         string
	DurationSeconds int64
	TimeoutSeconds  int
	ErrorType       ProbeErrorType `gorm:"type:varchar(20)"`
}

// TelemetryRecord is an externally pushed sensor capture. The raw
// submission is kept verbatim in Payload next to the derived summary
// columns. DeviceID is a best-effort match by plant/line/machine and
// stays empty when no registered device fits.
type TelemetryRecord struct {
	ID              uint   `gorm:"primaryKey"`
	DeviceID        string `gorm:"index"`
	Plant           string `gorm:"index"`
	Line            string
	Machine         string
	Position        string
	OperatorName    string
	RecordedAt      time.Time
	DurationSeconds int64
	Result          string
	SensorCount     int
	SampleCount     int
	PeakValue       float64
	Payload         datatypes.JSON
	CreatedAt       time.Time
}
