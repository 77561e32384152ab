package probe

import (
	"context"
	"errors"
	"net"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"plantops.xyz/device-uptime-service/pkg/common"
	"plantops.xyz/device-uptime-service/pkg/models"
	"plantops.xyz/device-uptime-service/pkg/monitor"
)

// DialFunc is the reachability attempt. Swappable in tests.
type DialFunc func(network, address string, timeout time.Duration) (net.Conn, error)

// Outcome is a classified probe result. Probe failures are data, not
// errors: every outcome maps to a status the uptime log can record.
type Outcome struct {
	Status    models.DeviceStatus
	ErrorType models.ProbeErrorType
	Message   string
}

// Prober drives recurring reachability checks against all active
// devices. Every device is probed on its own goroutine with its own
// deadline, so one slow timeout never delays another device's write.
type Prober struct {
	Monitor  *monitor.Monitor
	Interval time.Duration
	Dial     DialFunc
}

func New(m *monitor.Monitor, interval time.Duration) *Prober {
	return &Prober{
		Monitor:  m,
		Interval: interval,
		Dial:     net.DialTimeout,
	}
}

// Run ticks until the context is cancelled. A failed tick is logged
// and retried on the next one.
func (p *Prober) Run(ctx context.Context) {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		p.Tick()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Tick probes every active device concurrently and waits for all
// outcomes to be recorded.
func (p *Prober) Tick() {
	logger := common.GetLoggerWith(
		common.LoggerNameProber,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryProbe),
	)

	devices, err := p.Monitor.Registry.ListActive()
	if err != nil {
		logger.Error("Failed to list active devices, will retry next tick", zap.Error(err))
		return
	}

	var wg sync.WaitGroup
	for _, device := range devices {
		wg.Add(1)
		go func(d models.Device) {
			defer wg.Done()
			p.probeDevice(d)
		}(device)
	}
	wg.Wait()
}

func (p *Prober) probeDevice(d models.Device) {
	logger := common.GetLoggerWith(
		common.LoggerNameProber,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryProbe),
		zap.String("device_id", d.ID),
	)

	timeout := time.Duration(d.TimeoutSeconds) * time.Second
	outcome := p.Probe(d.Address, timeout)

	event, created, err := p.Monitor.Uptime.Record(d.ID, &models.UptimeEvent{
		Status:         outcome.Status,
		Message:        outcome.Message,
		ErrorType:      outcome.ErrorType,
		TimeoutSeconds: d.TimeoutSeconds,
	})
	if err != nil {
		logger.Error("Failed to record probe outcome", zap.Error(err))
		return
	}
	if created {
		logger.Info("Device changed state", zap.Reflect("event", event))
	}
}

// Probe attempts one bounded connect and classifies the result.
func (p *Prober) Probe(address string, timeout time.Duration) Outcome {
	dial := p.Dial
	if dial == nil {
		dial = net.DialTimeout
	}

	conn, err := dial("tcp", address, timeout)
	if err == nil {
		conn.Close()
		return Outcome{Status: models.StatusOnline}
	}
	return Classify(err)
}

// Classify maps a dial error to a device status:
// deadline exceeded -> timeout, unresolvable address -> offline with
// dns_failure, active refusal -> offline with connection_refused,
// anything else -> plain offline.
func Classify(err error) Outcome {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return Outcome{
			Status:    models.StatusOffline,
			ErrorType: models.ErrorTypeDNSFailure,
			Message:   err.Error(),
		}
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return Outcome{
			Status:    models.StatusOffline,
			ErrorType: models.ErrorTypeConnectionRefused,
			Message:   err.Error(),
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Outcome{
			Status:    models.StatusTimeout,
			ErrorType: models.ErrorTypeTimeout,
			Message:   err.Error(),
		}
	}

	return Outcome{
		Status:  models.StatusOffline,
		Message: err.Error(),
	}
}
