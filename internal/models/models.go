// Package models contains shared domain structs used across services.
package models

import "time"

// HealthResponse is returned by /healthz and /readyz endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// WireMessage is the JSON body published on the telemetry topic.
// Metrics is a name→value map so the simulator and the edge pipeline
// agree on field names without sharing a struct per sensor.
type WireMessage struct {
	TS       string             `json:"ts"`
	DeviceID string             `json:"device_id"`
	Metrics  map[string]float64 `json:"metrics"`
	Class    int                `json:"class"`
}

// Reading is a validated telemetry reading, the unit of work inside the
// edge pipeline. All metric fields are finite floats; out-of-range values
// are allowed and only flagged downstream.
type Reading struct {
	DeviceID     string
	TS           string
	Temperature  float64
	Humidity     float64
	SoilMoisture float64
	LightLevel   float64
	ClassCode    int
}

// Record is one persisted telemetry row. Rows are append-only: a Record is
// never mutated after insert and RowID values are never reused.
type Record struct {
	RowID        int64     `json:"row_id"`
	DeviceID     string    `json:"device_id"`
	TS           string    `json:"ts"`
	Temperature  float64   `json:"temperature"`
	Humidity     float64   `json:"humidity"`
	SoilMoisture float64   `json:"soil_moisture"`
	LightLevel   float64   `json:"light_level"`
	ClassCode    int       `json:"class_code"`
	AlertFlag    bool      `json:"alert_flag"`
	IngestedAt   time.Time `json:"ingested_at"`
}

// MetricNames lists the numeric sensor fields every wire message must carry.
var MetricNames = []string{"temperature", "humidity", "soil_moisture", "light_level"}

// TimestampLayout formats ingested_at values. The fractional seconds are
// fixed-width so lexicographic order over the stored strings equals
// chronological order — the consumers' window queries compare on the raw
// strings. time.RFC3339Nano trims trailing zeros and breaks that property
// at sub-second boundaries ("...00.5Z" sorts after "...00.52Z").
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Metric returns the named metric value from the reading.
// Unknown names return ok=false.
func (r Reading) Metric(name string) (float64, bool) {
	switch name {
	case "temperature":
		return r.Temperature, true
	case "humidity":
		return r.Humidity, true
	case "soil_moisture":
		return r.SoilMoisture, true
	case "light_level":
		return r.LightLevel, true
	}
	return 0, false
}
