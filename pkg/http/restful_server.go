package http

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"plantops.xyz/device-uptime-service/pkg/monitor"
)

type RestfulServer struct {
	Server           *gin.Engine
	Monitor          *monitor.Monitor
	RateLimiterStore *monitor.RateLimiterStore
}

func (rs *RestfulServer) GetLimiter(key string) *rate.Limiter {
	if rs.RateLimiterStore == nil {
		return nil
	} else {
		return rs.RateLimiterStore.GetLimiter(key)
	}
}

func (rs *RestfulServer) CheckLimiter(key string) bool {
	limiter := rs.GetLimiter(key)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

func (rs *RestfulServer) SetLimiter(key string, keyRate float64, keyBurst int) {
	if rs.RateLimiterStore == nil {
		return
	}
	rs.RateLimiterStore.SetLimiter(key, rate.Limit(keyRate), keyBurst)
}

func (rs *RestfulServer) Setup() {
	rs.Server.GET("/healthz", rs.HealthCheck)

	devices := rs.Server.Group("/devices")
	{
		devices.GET("", rs.ListDevices)
		devices.POST("", rs.UpsertDevice)
		devices.GET("/:device_id", rs.GetDevice)
		devices.DELETE("/:device_id", rs.DeactivateDevice)
		devices.POST("/:device_id/probe-result", rs.PostProbeResult)
		devices.GET("/:device_id/events", rs.GetEvents)
		devices.POST("/:device_id/limiter", rs.PostLimiter)
	}

	telemetry := rs.Server.Group("/telemetry")
	{
		telemetry.POST("", rs.PostTelemetry)
		telemetry.POST("/upload", rs.PostTelemetryUpload)
	}
}
