package monitor

import (
	"sync"
	"time"

	"plantops.xyz/device-uptime-service/pkg/db"
	"plantops.xyz/device-uptime-service/pkg/models"
)

type IRegistry interface {
	ListActive() ([]models.Device, error)
	Get(deviceID string) (*models.Device, error)
	Upsert(input *models.Device) (*models.Device, error)
	Deactivate(deviceID string) error
}

type IUptime interface {
	Record(deviceID string, input *models.UptimeEvent) (*models.UptimeEvent, bool, error)
	Query(deviceID string, from, to time.Time) ([]models.UptimeEvent, error)
}

type ITelemetry interface {
	Ingest(sub *models.TelemetrySubmission) (*models.TelemetrySummary, error)
}

type Monitor struct {
	Db        db.DB
	Registry  IRegistry
	Uptime    IUptime
	Telemetry ITelemetry

	// Now is the clock used for event timestamps; tests pin it.
	Now func() time.Time

	states     *stateStore
	statesOnce sync.Once
}

type ServiceOpts struct {
	Registry  IRegistry
	Uptime    IUptime
	Telemetry ITelemetry
}

func (m *Monitor) WithServices(opts ServiceOpts) *Monitor {
	if opts.Registry != nil {
		m.Registry = opts.Registry
	}
	if opts.Uptime != nil {
		m.Uptime = opts.Uptime
	}
	if opts.Telemetry != nil {
		m.Telemetry = opts.Telemetry
	}
	return m
}

func (m *Monitor) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}
