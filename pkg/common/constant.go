package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvKeyUptimeDBType string = "UPTIME_DB_TYPE"
	EnvKeyUptimeDbPath string = "UPTIME_DB_PATH"

	EnvKeyUptimeHttpHostPort string = "UPTIME_HTTP_HOST_PORT"

	EnvKeyUptimeProbeIntervalSeconds string = "UPTIME_PROBE_INTERVAL_SECONDS"

	EnvKeyUptimeDefaultRate  string = "UPTIME_DEFAULT_RATE"
	EnvKeyUptimeDefaultBurst string = "UPTIME_DEFAULT_BURST"

	LoggerNameMonitorCore   string = "monitor_core"
	LoggerNameRestfulServer string = "restful_server"
	LoggerNameProber        string = "prober"
	LoggerFieldCategory     string = "category"
	LoggerCategoryRegistry  string = "registry"
	LoggerCategoryUptime    string = "uptime"
	LoggerCategoryTelemetry string = "telemetry"
	LoggerCategoryProbe     string = "probe"
)
