package monitor

import (
	"bufio"
	"encoding/json"
	"io"
	"testing"

	"go.uber.org/mock/gomock"
	"plantops.xyz/device-uptime-service/pkg/db"
	"plantops.xyz/device-uptime-service/pkg/monitor/mocks"
)

func GetMockMonitorWithMemorySqliteDialector(t *testing.T, useMockIRegistry, useMockIUptime, useMockITelemetry bool) (
	*gomock.Controller,
	*Monitor,
	*mocks.MockIRegistry,
	*mocks.MockIUptime,
	*mocks.MockITelemetry,
) {
	ctrl := gomock.NewController(t)

	mockIRegistry := mocks.NewMockIRegistry(ctrl)
	mockIUptime := mocks.NewMockIUptime(ctrl)
	mockITelemetry := mocks.NewMockITelemetry(ctrl)
	dialector := db.UseMemorySqliteDialector()
	dbInstance := db.GetInstance(dialector) // ensure migrations
	monitorInstance := (&Monitor{Db: *dbInstance})

	registryService := monitorInstance.GetIRegistry()
	if useMockIRegistry {
		registryService = mockIRegistry
	}

	uptimeService := monitorInstance.GetIUptime()
	if useMockIUptime {
		uptimeService = mockIUptime
	}

	telemetryService := monitorInstance.GetITelemetry()
	if useMockITelemetry {
		telemetryService = mockITelemetry
	}

	monitorInstance.WithServices(ServiceOpts{
		Registry:  registryService,
		Uptime:    uptimeService,
		Telemetry: telemetryService,
	})

	return ctrl, monitorInstance, mockIRegistry, mockIUptime, mockITelemetry
}

func ParseLogs(r io.Reader) []any {
	scanner := bufio.NewScanner(r)
	var logs []any

	for scanner.Scan() {
		line := scanner.Text()
		var j any
		if err := json.Unmarshal([]byte(line), &j); err == nil {
			logs = append(logs, j)
		}
	}
	return logs
}
