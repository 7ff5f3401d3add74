// Package viewer implements the read-only polling terminal view over the
// telemetry store.
package viewer

// SQL queries for the viewer snapshot. All are read-only and tolerate an
// empty table.
const (
	queryTotalRows = `SELECT COUNT(*) FROM telemetry WHERE device_id = ?`

	queryAlertRows = `SELECT COUNT(*) FROM telemetry WHERE device_id = ? AND alert_flag = 1`

	// queryLastIngested orders by row_id, not ts: sender timestamps may be
	// skewed or duplicated, the write cursor never is.
	queryLastIngested = `
SELECT ingested_at FROM telemetry
WHERE device_id = ?
ORDER BY row_id DESC
LIMIT 1`

	queryRecentCount = `SELECT COUNT(*) FROM telemetry WHERE device_id = ? AND ingested_at >= ?`

	// queryDupTS counts surplus rows sharing a sender timestamp — the
	// visible footprint of at-least-once redelivery.
	queryDupTS = `
SELECT COALESCE(SUM(c - 1), 0)
FROM (
    SELECT ts, COUNT(*) AS c
    FROM telemetry
    WHERE device_id = ?
    GROUP BY ts
    HAVING c > 1
)`

	queryLastRows = `
SELECT row_id, device_id, ts, temperature, humidity, soil_moisture, light_level, class_code, alert_flag, ingested_at
FROM telemetry
WHERE device_id = ?
ORDER BY row_id DESC
LIMIT ?`
)
