// Package dashboard implements the HTTP handlers and read-only data access
// for the web dashboard service.
package dashboard

// SQL queries for the dashboard service. All read-only; paging is forward
// only, by row_id cursor — rows are never reordered or retracted once
// visible, so a consumer can keep its cursor across polls.
const (
	queryDistinctDevices = `SELECT DISTINCT device_id FROM telemetry ORDER BY device_id`

	queryReadingsAfter = `
SELECT row_id, device_id, ts, temperature, humidity, soil_moisture, light_level, class_code, alert_flag, ingested_at
FROM telemetry
WHERE device_id = ? AND row_id > ?
ORDER BY row_id ASC
LIMIT ?`

	querySummaryCounts = `
SELECT COUNT(*),
       COALESCE(SUM(alert_flag), 0)
FROM telemetry
WHERE device_id = ?`

	queryAlertBounds = `
SELECT MIN(ts), MAX(ts)
FROM telemetry
WHERE device_id = ? AND alert_flag = 1`

	queryLatestReading = `
SELECT row_id, device_id, ts, temperature, humidity, soil_moisture, light_level, class_code, alert_flag, ingested_at
FROM telemetry
WHERE device_id = ?
ORDER BY row_id DESC
LIMIT 1`
)
