package edge

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/YusufAkyuz/IoT-Project/internal/models"
)

var (
	errMissing   = errors.New("required field is missing")
	errNotFinite = errors.New("value is NaN or Inf")
)

// Decode turns one raw message body into a validated Reading.
//
// A body that is not well-formed JSON yields a *DecodeError. A well-formed
// body with a missing/empty device_id or ts, or a missing or non-finite
// required metric, yields a *ValidationError. Physically implausible but
// finite values (negative humidity, 80°C air) pass through: flagging them
// is the evaluator's and the consumers' job, not the decoder's.
func Decode(payload []byte) (models.Reading, error) {
	var msg models.WireMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return models.Reading{}, &DecodeError{Err: err}
	}

	if msg.DeviceID == "" {
		return models.Reading{}, &ValidationError{Field: "device_id", Err: errMissing}
	}
	if msg.TS == "" {
		return models.Reading{}, &ValidationError{Field: "ts", Err: errMissing}
	}

	reading := models.Reading{
		DeviceID:  msg.DeviceID,
		TS:        msg.TS,
		ClassCode: msg.Class,
	}

	for _, name := range models.MetricNames {
		v, ok := msg.Metrics[name]
		if !ok {
			return models.Reading{}, &ValidationError{Field: "metrics." + name, Err: errMissing}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return models.Reading{}, &ValidationError{Field: "metrics." + name, Err: errNotFinite}
		}
		switch name {
		case "temperature":
			reading.Temperature = v
		case "humidity":
			reading.Humidity = v
		case "soil_moisture":
			reading.SoilMoisture = v
		case "light_level":
			reading.LightLevel = v
		}
	}

	return reading, nil
}

// snippet truncates a raw payload for diagnostic logging so a broken
// multi-kilobyte body does not flood the log.
func snippet(payload []byte) string {
	const max = 120
	if len(payload) <= max {
		return string(payload)
	}
	return fmt.Sprintf("%s... (%d bytes)", payload[:max], len(payload))
}
