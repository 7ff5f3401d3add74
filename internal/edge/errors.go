// Package edge implements the telemetry ingestion pipeline: MQTT
// subscription, payload decoding and validation, threshold evaluation, and
// the single-writer store path.
package edge

import "fmt"

// DecodeError marks a payload that is not well-formed JSON.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// ValidationError marks a structurally valid payload with missing or
// unusable required fields.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string { return fmt.Sprintf("validate %s: %v", e.Field, e.Err) }
func (e *ValidationError) Unwrap() error { return e.Err }

// WriteError marks a store insert that failed after the retry budget was
// exhausted. The reading it carries was dropped.
type WriteError struct {
	Attempts int
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write failed after %d attempts: %v", e.Attempts, e.Err)
}
func (e *WriteError) Unwrap() error { return e.Err }

// ConnectError marks a failed broker connection attempt. It is never fatal;
// the subscriber keeps retrying with backoff.
type ConnectError struct {
	Broker string
	Err    error
}

func (e *ConnectError) Error() string { return fmt.Sprintf("connect %s: %v", e.Broker, e.Err) }
func (e *ConnectError) Unwrap() error { return e.Err }
