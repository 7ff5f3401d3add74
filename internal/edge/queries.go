package edge

// SQL for the writer path is collected here so it is easy to audit.
const (
	// queryInsertReading appends one telemetry row. RETURNING row_id gives
	// the writer the AUTOINCREMENT key in the same statement, so an insert
	// either commits fully with a visible row_id or fails entirely.
	queryInsertReading = `
INSERT INTO telemetry (device_id, ts, temperature, humidity, soil_moisture, light_level, class_code, alert_flag, ingested_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING row_id`
)
