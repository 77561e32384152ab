package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"plantops.xyz/device-uptime-service/pkg/common"
	"plantops.xyz/device-uptime-service/pkg/db"
	monitorHttp "plantops.xyz/device-uptime-service/pkg/http"
	"plantops.xyz/device-uptime-service/pkg/monitor"
	"plantops.xyz/device-uptime-service/pkg/probe"
)

func main() {
	var err error

	err = godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file, copy .env.example to .env first if in development")
	}

	var dbInstance *db.DB
	uptimeDbType := os.Getenv(common.EnvKeyUptimeDBType)
	switch uptimeDbType {
	case "file":
		dbInstance = db.GetInstance(db.UseSqliteDialector())
	case "memory":
		dbInstance = db.GetInstance(db.UseMemorySqliteDialector())
	default:
		log.Fatal("Unknown UPTIME_DB_TYPE: " + uptimeDbType)
	}

	httpHostPort := strings.TrimSpace(os.Getenv(common.EnvKeyUptimeHttpHostPort))

	var defaultRate float64
	var defaultBurst int64
	var probeIntervalSeconds int64

	if defaultRate, err = strconv.ParseFloat(os.Getenv(common.EnvKeyUptimeDefaultRate), 64); err != nil {
		log.Fatal("Invalid UPTIME_DEFAULT_RATE, or not set in .env, should be a float64 value")
	}

	if defaultBurst, err = strconv.ParseInt(os.Getenv(common.EnvKeyUptimeDefaultBurst), 10, 64); err != nil {
		log.Fatal("Invalid UPTIME_DEFAULT_BURST, or not set in .env, should be an int value")
	}

	if probeIntervalSeconds, err = strconv.ParseInt(os.Getenv(common.EnvKeyUptimeProbeIntervalSeconds), 10, 64); err != nil || probeIntervalSeconds <= 0 {
		log.Fatal("Invalid UPTIME_PROBE_INTERVAL_SECONDS, or not set in .env, should be a positive int value")
	}

	logger := common.GetLogger()

	monitorCore := monitor.Monitor{
		Db: *dbInstance,
	}
	monitorCore.WithServices(monitor.ServiceOpts{
		Registry:  monitorCore.GetIRegistry(),
		Uptime:    monitorCore.GetIUptime(),
		Telemetry: monitorCore.GetITelemetry(),
	})

	prober := probe.New(&monitorCore, time.Duration(probeIntervalSeconds)*time.Second)
	logger.Info("Starting prober", zap.Int64("interval_seconds", probeIntervalSeconds))
	go prober.Run(context.Background())

	if httpHostPort == "" {
		// fallback to default http port
		httpHostPort = ":1080"
	}

	logger.Info("Starting HTTP server on port " + httpHostPort)
	rs := &monitorHttp.RestfulServer{
		Server:           gin.Default(),
		Monitor:          &monitorCore,
		RateLimiterStore: monitor.NewRateLimiterStore(rate.Limit(defaultRate), int(defaultBurst)),
	}
	rs.Setup()

	logger.Info("http server created with:",
		zap.String("default_limiter",
			fmt.Sprintf("{\"default_rate\": %v, \"default_burst\": %v}", defaultRate, defaultBurst)))

	logger.Info("Starting HTTP server on: " + httpHostPort)
	if err := rs.Server.Run(httpHostPort); err != nil {
		log.Fatalf("http server failed to serve: %v", err)
	}
}
