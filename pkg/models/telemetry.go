package models

import (
	"encoding/json"
	"time"
)

type TelemetryMetadata struct {
	Plant           string     `json:"plant"`
	Line            string     `json:"line"`
	Machine         string     `json:"machine"`
	Position        string     `json:"position"`
	RecordedAt      *time.Time `json:"recorded_at,omitempty"`
	CollectionStart *time.Time `json:"collection_start,omitempty"`
	CollectionEnd   *time.Time `json:"collection_end,omitempty"`
	SensorCount     *int       `json:"sensor_count,omitempty"`
	PeakValue       *float64   `json:"peak_value,omitempty"`
}

type SensorCapture struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// TelemetrySubmission is the single shape both ingest entry points
// (direct JSON and file upload) decode into. Raw keeps the original
// body so the stored payload is byte-faithful to what the device sent.
type TelemetrySubmission struct {
	Metadata     *TelemetryMetadata `json:"metadata"`
	Sensors      []SensorCapture    `json:"sensors"`
	OperatorName string             `json:"-"`
	Raw          json.RawMessage    `json:"-"`
}

type TelemetrySummary struct {
	ID              uint      `json:"id"`
	DeviceID        string    `json:"device_id,omitempty"`
	Plant           string    `json:"plant"`
	Line            string    `json:"line"`
	Machine         string    `json:"machine"`
	Position        string    `json:"position"`
	RecordedAt      time.Time `json:"recorded_at"`
	DurationSeconds int64     `json:"duration_seconds"`
	Result          string    `json:"result"`
	SensorCount     int       `json:"sensor_count"`
	SampleCount     int       `json:"sample_count"`
	PeakValue       float64   `json:"peak_value"`
}
