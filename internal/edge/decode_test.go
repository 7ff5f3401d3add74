package edge_test

import (
	"errors"
	"testing"

	"github.com/YusufAkyuz/IoT-Project/internal/edge"
)

func validPayload() []byte {
	return []byte(`{
		"ts": "2025-01-01T08:00:00Z",
		"device_id": "gh_01",
		"metrics": {"temperature": 22.5, "humidity": 55.0, "soil_moisture": 30.1, "light_level": 420.0},
		"class": 1
	}`)
}

func TestDecode_ValidPayload(t *testing.T) {
	reading, err := edge.Decode(validPayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reading.DeviceID != "gh_01" {
		t.Errorf("device_id: got %q", reading.DeviceID)
	}
	if reading.TS != "2025-01-01T08:00:00Z" {
		t.Errorf("ts: got %q", reading.TS)
	}
	if reading.Temperature != 22.5 || reading.Humidity != 55.0 {
		t.Errorf("metrics: got temp=%v humidity=%v", reading.Temperature, reading.Humidity)
	}
	if reading.ClassCode != 1 {
		t.Errorf("class_code: got %d", reading.ClassCode)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		decode     bool // expect *DecodeError, else *ValidationError
	}{
		{
			name:    "not json",
			payload: `this is not json`,
			decode:  true,
		},
		{
			name:    "truncated json",
			payload: `{"device_id": "gh_01", "metrics": {`,
			decode:  true,
		},
		{
			name:    "missing device_id",
			payload: `{"ts":"2025-01-01T08:00:00Z","metrics":{"temperature":1,"humidity":1,"soil_moisture":1,"light_level":1},"class":0}`,
		},
		{
			name:    "empty device_id",
			payload: `{"ts":"2025-01-01T08:00:00Z","device_id":"","metrics":{"temperature":1,"humidity":1,"soil_moisture":1,"light_level":1},"class":0}`,
		},
		{
			name:    "missing ts",
			payload: `{"device_id":"gh_01","metrics":{"temperature":1,"humidity":1,"soil_moisture":1,"light_level":1},"class":0}`,
		},
		{
			name:    "missing metric",
			payload: `{"ts":"2025-01-01T08:00:00Z","device_id":"gh_01","metrics":{"temperature":1,"humidity":1,"soil_moisture":1},"class":0}`,
		},
		{
			name:    "no metrics object",
			payload: `{"ts":"2025-01-01T08:00:00Z","device_id":"gh_01","class":0}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := edge.Decode([]byte(tt.payload))
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var decodeErr *edge.DecodeError
			var validationErr *edge.ValidationError
			if tt.decode {
				if !errors.As(err, &decodeErr) {
					t.Errorf("expected DecodeError, got %T: %v", err, err)
				}
			} else {
				if !errors.As(err, &validationErr) {
					t.Errorf("expected ValidationError, got %T: %v", err, err)
				}
			}
		})
	}
}

func TestDecode_OutOfRangeValuesPassThrough(t *testing.T) {
	// Physically implausible but finite values are not the decoder's
	// business: they are flagged downstream, not rejected.
	payload := `{"ts":"2025-01-01T08:00:00Z","device_id":"gh_01","metrics":{"temperature":-80.0,"humidity":-5.0,"soil_moisture":999.0,"light_level":0},"class":0}`

	reading, err := edge.Decode([]byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reading.Humidity != -5.0 {
		t.Errorf("humidity: got %v, want -5.0 passed through", reading.Humidity)
	}
}
