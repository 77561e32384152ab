package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"plantops.xyz/device-uptime-service/pkg/monitor/mocks"
	_ "plantops.xyz/device-uptime-service/pkg/testing"

	"plantops.xyz/device-uptime-service/pkg/common"
	"plantops.xyz/device-uptime-service/pkg/db"
	"plantops.xyz/device-uptime-service/pkg/models"
	"plantops.xyz/device-uptime-service/pkg/monitor"
)

func setupTestServer() *RestfulServer {
	monitorObj := monitor.Monitor{
		Db: *db.GetInstance(db.UseMemorySqliteDialector()),
	}
	monitorObj.WithServices(monitor.ServiceOpts{
		Registry:  monitorObj.GetIRegistry(),
		Uptime:    monitorObj.GetIUptime(),
		Telemetry: monitorObj.GetITelemetry(),
	})

	rs := &RestfulServer{
		Server:  gin.Default(),
		Monitor: &monitorObj,
		// default we use no limiter, if need, later assign rs.RateLimiterStore = monitor.NewRateLimiterStore(...)
	}

	rs.Setup()

	return rs
}

func setupTestServerWithLimiter(limiter *monitor.RateLimiterStore) *RestfulServer {
	rs := setupTestServer()
	rs.RateLimiterStore = limiter
	return rs
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func doJSON(rs *RestfulServer, method, path string, body []byte, asSuperuser bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if asSuperuser {
		req.Header.Set("X-Operator", "test-admin")
		req.Header.Set("X-Superuser", "true")
	}
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	return w
}

func createTestDevice(t *testing.T, rs *RestfulServer) DeviceResponse {
	t.Helper()
	body, _ := json.Marshal(DeviceRequest{
		Name:           "press-" + uuid.NewString()[:8],
		Address:        uuid.NewString() + ":502",
		Plant:          "P1",
		Line:           "L1",
		DeviceType:     "loadcell",
		TimeoutSeconds: 5,
	})
	w := doJSON(rs, "POST", "/devices", body, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	require.Equal(t, "success", env.Status)

	var device DeviceResponse
	require.NoError(t, json.Unmarshal(env.Data, &device))
	require.NotEmpty(t, device.ID)
	return device
}

func TestHealthCheck(t *testing.T) {
	rs := setupTestServer()

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()

	rs.Server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestDeviceLifecycle(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	device := createTestDevice(t, rs)

	w := doJSON(rs, "GET", "/devices/"+device.ID, nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	var fetched DeviceResponse
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, device.Address, fetched.Address)
	assert.True(t, fetched.Active)

	w = doJSON(rs, "DELETE", "/devices/"+device.ID, nil, true)
	assert.Equal(t, http.StatusOK, w.Code)

	// deactivated, not deleted
	w = doJSON(rs, "GET", "/devices/"+device.ID, nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	env = decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.False(t, fetched.Active)

	// and gone from the active list
	w = doJSON(rs, "GET", "/devices", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	env = decodeEnvelope(t, w)
	var listed []DeviceResponse
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	for _, d := range listed {
		assert.NotEqual(t, device.ID, d.ID)
	}
}

func TestDeviceEndpoints_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	{
		// empty payload should be rejected
		w := doJSON(rs, "POST", "/devices", []byte("{}"), true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	{
		w := doJSON(rs, "GET", "/devices/"+uuid.NewString(), nil, false)
		assert.Equal(t, http.StatusNotFound, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, "error", env.Status)
	}

	{
		w := doJSON(rs, "DELETE", "/devices/"+uuid.NewString(), nil, true)
		assert.Equal(t, http.StatusNotFound, w.Code)
	}

	{
		// duplicate address among active devices
		device := createTestDevice(t, rs)
		body, _ := json.Marshal(DeviceRequest{
			Name:           "other",
			Address:        device.Address,
			TimeoutSeconds: 5,
		})
		w := doJSON(rs, "POST", "/devices", body, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		assert.Contains(t, env.Message, device.Address)
	}
}

func TestDeviceMutations_Authorization(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	body, _ := json.Marshal(DeviceRequest{
		Name:           "press",
		Address:        uuid.NewString() + ":502",
		TimeoutSeconds: 5,
	})

	{
		// no principal capabilities -> deny with the reason verbatim
		req := httptest.NewRequest("POST", "/devices", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Operator", "visitor")
		w := httptest.NewRecorder()
		rs.Server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		env := decodeEnvelope(t, w)
		assert.Contains(t, env.Message, "devices:write")
		assert.Contains(t, env.Message, "visitor")
	}

	{
		// granted capability passes without superuser
		req := httptest.NewRequest("POST", "/devices", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Operator", "line-admin")
		req.Header.Set("X-Capabilities", "devices:write")
		w := httptest.NewRecorder()
		rs.Server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	}
}

func TestProbeResultAndEvents(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()
	device := createTestDevice(t, rs)

	post := func(payload string) *httptest.ResponseRecorder {
		return doJSON(rs, "POST", "/devices/"+device.ID+"/probe-result", []byte(payload), false)
	}

	w := post(`{"status":"online"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	// same-state re-poll writes nothing
	w = post(`{"status":"online"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "suppressed")

	w = post(`{"status":"timeout","message":"no response","timeout_seconds":5}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(rs, "GET", "/devices/"+device.ID+"/events", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)

	var events []models.UptimeEvent
	require.NoError(t, json.Unmarshal(env.Data, &events))
	require.Len(t, events, 2)
	assert.Equal(t, models.StatusOnline, events[0].Status)
	assert.Equal(t, models.StatusTimeout, events[1].Status)
	assert.Equal(t, models.ErrorTypeTimeout, events[1].ErrorType)
	assert.Equal(t, 5, events[1].TimeoutSeconds)
	assert.True(t, events[1].Timestamp.After(events[0].Timestamp))
}

func TestProbeResult_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()
	device := createTestDevice(t, rs)

	{
		// empty payload should be rejected
		w := doJSON(rs, "POST", "/devices/"+device.ID+"/probe-result", []byte("{}"), false)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	{
		w := doJSON(rs, "POST", "/devices/"+device.ID+"/probe-result",
			[]byte(`{"status":"offline","error_type":"bogus"}`), false)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	{
		w := doJSON(rs, "POST", "/devices/"+uuid.NewString()+"/probe-result",
			[]byte(`{"status":"online"}`), false)
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
}

func TestGetEvents_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()
	device := createTestDevice(t, rs)

	{
		w := doJSON(rs, "GET", "/devices/"+device.ID+"/events?from=yesterday", nil, false)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	{
		w := doJSON(rs, "GET", "/devices/"+uuid.NewString()+"/events", nil, false)
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
}

func TestPostTelemetry(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	body := []byte(`{"metadata":{"plant":"P1","line":"L1","machine":"M1","position":"A"},"sensors":[]}`)
	w := doJSON(rs, "POST", "/telemetry", body, false)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	assert.Equal(t, "success", env.Status)

	var summary models.TelemetrySummary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.NotZero(t, summary.ID)
	assert.Equal(t, "P1", summary.Plant)
	assert.Equal(t, "std", summary.Result)
}

func TestPostTelemetry_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	{
		// missing required metadata field
		body := []byte(`{"metadata":{"plant":"P1","line":"L1","machine":"M1"},"sensors":[]}`)
		w := doJSON(rs, "POST", "/telemetry", body, false)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, "Missing required metadata field: position", env.Message)
	}

	{
		// malformed encoding is a parse error, not a field error
		w := doJSON(rs, "POST", "/telemetry", []byte(`{"metadata":`), false)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		assert.Contains(t, env.Message, "invalid JSON payload")
	}

	{
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockITelemetry := mocks.NewMockITelemetry(ctrl)
		rs.Monitor.Telemetry = mockITelemetry
		defer func() { rs.Monitor.Telemetry = rs.Monitor.GetITelemetry() }()
		mockITelemetry.EXPECT().
			Ingest(gomock.Any()).
			Return(nil, fmt.Errorf("just causing error")).
			Times(1)

		body := []byte(`{"metadata":{"plant":"P1","line":"L1","machine":"M1","position":"A"},"sensors":[]}`)
		w := doJSON(rs, "POST", "/telemetry", body, false)
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		// internal details never leak to the caller
		env := decodeEnvelope(t, w)
		assert.NotContains(t, env.Message, "just causing error")
	}
}

func multipartUpload(t *testing.T, rs *RestfulServer, filename, contentType string, fileBody []byte, operatorName string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(fileBody)
	require.NoError(t, err)

	if operatorName != "" {
		require.NoError(t, writer.WriteField("operator_name", operatorName))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/telemetry/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	return w
}

func TestPostTelemetryUpload(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	fileBody := []byte(`{"metadata":{"plant":"P2","line":"L2","machine":"M2","position":"B"},"sensors":[{"name":"loadcell_1","values":[1.5,2.5]}]}`)
	w := multipartUpload(t, rs, "capture.json", "application/json", fileBody, "jsmith")
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	var summary models.TelemetrySummary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, "P2", summary.Plant)
	assert.Equal(t, 2, summary.SampleCount)

	var saved models.TelemetryRecord
	require.NoError(t, rs.Monitor.Db.Conn.First(&saved, "id = ?", summary.ID).Error)
	assert.Equal(t, "jsmith", saved.OperatorName)
}

func TestPostTelemetryUpload_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	goodBody := []byte(`{"metadata":{"plant":"P1","line":"L1","machine":"M1","position":"A"},"sensors":[]}`)

	{
		// no file part
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		require.NoError(t, writer.WriteField("operator_name", "jsmith"))
		require.NoError(t, writer.Close())

		req := httptest.NewRequest("POST", "/telemetry/upload", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		w := httptest.NewRecorder()
		rs.Server.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	{
		// unsupported content type and extension
		w := multipartUpload(t, rs, "capture.bin", "application/octet-stream", goodBody, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	{
		// over the 10 MB cap
		big := bytes.Repeat([]byte(" "), maxUploadBytes+1)
		w := multipartUpload(t, rs, "capture.json", "application/json", big, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		assert.Contains(t, env.Message, "10 MB")
	}

	{
		// operator name too long
		long := make([]byte, maxOperatorNameLen+1)
		for i := range long {
			long[i] = 'x'
		}
		w := multipartUpload(t, rs, "capture.json", "application/json", goodBody, string(long))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	{
		// file content must still parse as JSON
		w := multipartUpload(t, rs, "capture.txt", "text/plain", []byte("not json"), "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		assert.Contains(t, env.Message, "invalid JSON payload")
	}

	{
		// both entry points share the validation path
		missingPosition := []byte(`{"metadata":{"plant":"P1","line":"L1","machine":"M1"},"sensors":[]}`)
		w := multipartUpload(t, rs, "capture.json", "application/json", missingPosition, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, "Missing required metadata field: position", env.Message)
	}
}

func TestLimiter(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServerWithLimiter(monitor.NewRateLimiterStore(0, 0))

	device := createTestDevice(t, rs)

	// nothing should pass below
	{
		w := doJSON(rs, "POST", "/devices/"+device.ID+"/probe-result",
			[]byte(`{"status":"online"}`), false)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	}

	{
		body := []byte(`{"metadata":{"plant":"P1","line":"L1","machine":"M1","position":"A"},"sensors":[]}`)
		w := doJSON(rs, "POST", "/telemetry", body, false)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	}
}

func TestPostLimiter(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServerWithLimiter(monitor.NewRateLimiterStore(2, 2))

	device := createTestDevice(t, rs)

	post := func() *httptest.ResponseRecorder {
		return doJSON(rs, "POST", "/devices/"+device.ID+"/probe-result",
			[]byte(`{"status":"online"}`), false)
	}

	// burst of 2, third attempt rejected
	w := post()
	require.Equal(t, http.StatusCreated, w.Code)
	w = post()
	require.Equal(t, http.StatusOK, w.Code) // suppressed repeat, still consumes a token
	w = post()
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	// raising the device limit re-opens the gate
	w = doJSON(rs, "POST", "/devices/"+device.ID+"/limiter",
		[]byte(`{"rate":100,"burst":100}`), true)
	require.Equal(t, http.StatusOK, w.Code)

	w = post()
	require.Equal(t, http.StatusOK, w.Code)
}

func TestPostLimiter_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	{
		rs := setupTestServerWithLimiter(monitor.NewRateLimiterStore(2, 2))
		device := createTestDevice(t, rs)

		// empty payload should be rejected
		w := doJSON(rs, "POST", "/devices/"+device.ID+"/limiter", []byte("{}"), true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	{
		// without a limiter store the endpoint is accepted but has no effect
		rs := setupTestServer()
		device := createTestDevice(t, rs)

		w := doJSON(rs, "POST", "/devices/"+device.ID+"/limiter",
			[]byte(`{"rate":2,"burst":2}`), true)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(rs, "POST", "/devices/"+device.ID+"/probe-result",
			[]byte(`{"status":"online"}`), false)
		assert.Equal(t, http.StatusCreated, w.Code)
	}
}
