package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"

	"plantops.xyz/device-uptime-service/pkg/auth"
	"plantops.xyz/device-uptime-service/pkg/common"
	"plantops.xyz/device-uptime-service/pkg/models"
	"plantops.xyz/device-uptime-service/pkg/monitor"
)

const (
	maxUploadBytes     = 10 << 20
	maxOperatorNameLen = 50
	headerOperator     = "X-Operator"
	headerSuperuser    = "X-Superuser"
	headerCapabilities = "X-Capabilities"
)

func respondSuccess(c *gin.Context, code int, data any) {
	c.JSON(code, gin.H{"status": "success", "data": data})
}

func respondError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"status": "error", "message": message})
}

// respondCoreError maps core errors to the envelope. Unexpected
// failures are logged with full context but never echoed to callers.
func respondCoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, monitor.ErrNotFound):
		respondError(c, http.StatusNotFound, "resource not found")
	case monitor.IsValidationError(err):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		logger := common.GetLoggerWith(common.LoggerNameRestfulServer)
		logger.Error("Unexpected failure", zap.String("path", c.FullPath()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}

// principalFrom builds the acting identity from request headers. The
// capability list is typed, never pattern-matched.
func principalFrom(c *gin.Context) *auth.Principal {
	return &auth.Principal{
		Name:         c.GetHeader(headerOperator),
		IsSuperuser:  c.GetHeader(headerSuperuser) == "true",
		Capabilities: auth.ParseCapabilities(c.GetHeader(headerCapabilities)),
	}
}

func (rs *RestfulServer) authorize(c *gin.Context, action auth.Capability) bool {
	decision := auth.Can(principalFrom(c), action)
	if !decision.Allowed {
		respondError(c, http.StatusForbidden, decision.Reason)
		return false
	}
	return true
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type DeviceResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Address        string `json:"address"`
	Plant          string `json:"plant"`
	Line           string `json:"line"`
	DeviceType     string `json:"device_type"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	Active         bool   `json:"active"`
}

func toDeviceResponse(d models.Device) DeviceResponse {
	return DeviceResponse{
		ID:             d.ID,
		Name:           d.Name,
		Address:        d.Address,
		Plant:          d.Plant,
		Line:           d.Line,
		DeviceType:     d.DeviceType,
		TimeoutSeconds: d.TimeoutSeconds,
		Active:         d.Active,
	}
}

func (rs *RestfulServer) ListDevices(c *gin.Context) {
	devices, err := rs.Monitor.Registry.ListActive()
	if err != nil {
		respondCoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, common.Mapper(devices, toDeviceResponse))
}

func (rs *RestfulServer) GetDevice(c *gin.Context) {
	device, err := rs.Monitor.Registry.Get(c.Param("device_id"))
	if err != nil {
		respondCoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, toDeviceResponse(*device))
}

type DeviceRequest struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Address        string `json:"address"`
	Plant          string `json:"plant"`
	Line           string `json:"line"`
	DeviceType     string `json:"device_type"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

var deviceRequestSchema = z.Struct(z.Shape{
	"ID":             z.String().Optional(),
	"Name":           z.String().Required(),
	"Address":        z.String().Required(),
	"Plant":          z.String().Optional(),
	"Line":           z.String().Optional(),
	"DeviceType":     z.String().Optional(),
	"TimeoutSeconds": z.Int().Required(),
})

func (rs *RestfulServer) UpsertDevice(c *gin.Context) {
	if !rs.authorize(c, auth.CapDevicesWrite) {
		return
	}

	var req DeviceRequest
	if err := deviceRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid device payload", "error": err})
		return
	}

	device, err := rs.Monitor.Registry.Upsert(&models.Device{
		ID:             req.ID,
		Name:           req.Name,
		Address:        req.Address,
		Plant:          req.Plant,
		Line:           req.Line,
		DeviceType:     req.DeviceType,
		TimeoutSeconds: req.TimeoutSeconds,
		Active:         true,
	})
	if err != nil {
		respondCoreError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, toDeviceResponse(*device))
}

func (rs *RestfulServer) DeactivateDevice(c *gin.Context) {
	if !rs.authorize(c, auth.CapDevicesWrite) {
		return
	}

	if err := rs.Monitor.Registry.Deactivate(c.Param("device_id")); err != nil {
		respondCoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"deactivated": true})
}

type ProbeResultRequest struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	ErrorType      string `json:"error_type"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

var probeResultRequestSchema = z.Struct(z.Shape{
	"Status":         z.String().Required().OneOf([]string{"online", "offline", "timeout", "idle"}),
	"Message":        z.String().Optional(),
	"ErrorType":      z.String().Optional(),
	"TimeoutSeconds": z.Int().Optional(),
})

func (rs *RestfulServer) PostProbeResult(c *gin.Context) {
	deviceID := c.Param("device_id")

	if !rs.CheckLimiter(deviceID) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	var req ProbeResultRequest
	if err := probeResultRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid probe result payload", "error": err})
		return
	}

	switch models.ProbeErrorType(req.ErrorType) {
	case models.ErrorTypeNone, models.ErrorTypeConnectionRefused,
		models.ErrorTypeDNSFailure, models.ErrorTypeTimeout:
	default:
		respondError(c, http.StatusBadRequest, fmt.Sprintf("unknown error_type %q", req.ErrorType))
		return
	}

	event, created, err := rs.Monitor.Uptime.Record(deviceID, &models.UptimeEvent{
		Status:         models.DeviceStatus(req.Status),
		Message:        req.Message,
		ErrorType:      models.ProbeErrorType(req.ErrorType),
		TimeoutSeconds: req.TimeoutSeconds,
	})
	if err != nil {
		respondCoreError(c, err)
		return
	}

	if !created {
		respondSuccess(c, http.StatusOK, gin.H{"suppressed": true})
		return
	}
	respondSuccess(c, http.StatusCreated, event)
}

func (rs *RestfulServer) GetEvents(c *gin.Context) {
	deviceID := c.Param("device_id")

	var from, to time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid 'from' timestamp, expect RFC3339")
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid 'to' timestamp, expect RFC3339")
			return
		}
		to = parsed
	}

	// events exist only for registered devices; unknown ids are 404
	if _, err := rs.Monitor.Registry.Get(deviceID); err != nil {
		respondCoreError(c, err)
		return
	}

	events, err := rs.Monitor.Uptime.Query(deviceID, from, to)
	if err != nil {
		respondCoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, events)
}

type LimiterRequest struct {
	Rate  float64 `json:"rate"`
	Burst int     `json:"burst"`
}

var limiterRequestSchema = z.Struct(z.Shape{
	"rate":  z.Float64().Required(),
	"burst": z.Int().Required(),
})

func (rs *RestfulServer) PostLimiter(c *gin.Context) {
	if !rs.authorize(c, auth.CapLimiterWrite) {
		return
	}

	deviceID := c.Param("device_id")

	var req LimiterRequest
	if err := limiterRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid limiter payload", "error": err})
		return
	}

	rs.SetLimiter(deviceID, req.Rate, req.Burst)

	respondSuccess(c, http.StatusOK, gin.H{"rate": req.Rate, "burst": req.Burst})
}

// telemetryKey rate-limits push telemetry by source identity rather
// than by caller address, since many field devices may share a relay.
func telemetryKey(meta *models.TelemetryMetadata) string {
	return meta.Plant + ":" + meta.Line + ":" + meta.Machine
}

func (rs *RestfulServer) ingestTelemetryBody(c *gin.Context, body []byte, operatorName string) {
	var sub models.TelemetrySubmission
	if err := json.Unmarshal(body, &sub); err != nil {
		// malformed encoding is a parse error, distinct from field validation
		respondError(c, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}
	sub.Raw = body
	sub.OperatorName = operatorName

	if sub.Metadata != nil && !rs.CheckLimiter(telemetryKey(sub.Metadata)) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	summary, err := rs.Monitor.Telemetry.Ingest(&sub)
	if err != nil {
		respondCoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, summary)
}

func (rs *RestfulServer) PostTelemetry(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to read request body")
		return
	}
	rs.ingestTelemetryBody(c, body, "")
}

func uploadContentTypeAccepted(contentType, filename string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "application/json" || mediaType == "text/plain" {
		return true
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json", ".txt":
		return true
	}
	return false
}

func (rs *RestfulServer) PostTelemetryUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Missing required field: file")
		return
	}

	if fileHeader.Size > maxUploadBytes {
		respondError(c, http.StatusBadRequest, "file exceeds the 10 MB limit")
		return
	}

	if !uploadContentTypeAccepted(fileHeader.Header.Get("Content-Type"), fileHeader.Filename) {
		respondError(c, http.StatusBadRequest, "file must be JSON or plain text")
		return
	}

	operatorName := c.PostForm("operator_name")
	if len(operatorName) > maxOperatorNameLen {
		respondError(c, http.StatusBadRequest, "operator_name must be at most 50 characters")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "file is not readable")
		return
	}
	defer file.Close()

	body, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		respondError(c, http.StatusBadRequest, "file is not readable")
		return
	}
	if len(body) > maxUploadBytes {
		respondError(c, http.StatusBadRequest, "file exceeds the 10 MB limit")
		return
	}

	rs.ingestTelemetryBody(c, body, operatorName)
}
