// Package plot renders a recent metric trend from the telemetry store as a
// terminal chart.
package plot

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/YusufAkyuz/IoT-Project/internal/models"
)

// Point is one series sample.
type Point struct {
	TS    string
	Value float64
	Alert bool
}

// Store provides the read-only series query.
type Store struct {
	db *sql.DB
}

// NewStore wraps a read-only store handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// The metric name becomes a column reference, so it is validated against
// the known columns instead of being interpolated blindly.
func metricColumn(metric string) (string, error) {
	if slices.Contains(models.MetricNames, metric) {
		return metric, nil
	}
	return "", fmt.Errorf("unknown metric %q (want one of %v)", metric, models.MetricNames)
}

// Series returns the newest limit samples of one metric for one device,
// oldest first. With dedupTS set, rows sharing a sender timestamp collapse
// to the newest row (highest row_id) — useful when broker redelivery has
// produced duplicate rows.
func (s *Store) Series(ctx context.Context, deviceID, metric string, limit int, dedupTS bool) ([]Point, error) {
	col, err := metricColumn(metric)
	if err != nil {
		return nil, err
	}

	var rows *sql.Rows
	if dedupTS {
		q := fmt.Sprintf(`
SELECT t.ts, t.%s, t.alert_flag
FROM telemetry t
JOIN (
    SELECT ts, MAX(row_id) AS rid
    FROM telemetry
    WHERE device_id = ?
    GROUP BY ts
    ORDER BY ts DESC
    LIMIT ?
) x ON t.ts = x.ts AND t.row_id = x.rid
WHERE t.device_id = ?
ORDER BY t.ts ASC, t.row_id ASC`, col)
		rows, err = s.db.QueryContext(ctx, q, deviceID, limit, deviceID)
	} else {
		q := fmt.Sprintf(`
SELECT ts, v, alert_flag FROM (
    SELECT ts, %s AS v, alert_flag, row_id
    FROM telemetry
    WHERE device_id = ?
    ORDER BY row_id DESC
    LIMIT ?
)
ORDER BY row_id ASC`, col)
		rows, err = s.db.QueryContext(ctx, q, deviceID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("series query: %w", err)
	}
	defer rows.Close()

	var pts []Point
	for rows.Next() {
		var p Point
		var alert int
		if err := rows.Scan(&p.TS, &p.Value, &alert); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		p.Alert = alert != 0
		pts = append(pts, p)
	}
	return pts, rows.Err()
}

// SeriesAll fetches every metric's series for the combined all-metrics
// view, keyed by metric name.
func (s *Store) SeriesAll(ctx context.Context, deviceID string, limit int, dedupTS bool) (map[string][]Point, error) {
	byMetric := make(map[string][]Point, len(models.MetricNames))
	for _, metric := range models.MetricNames {
		pts, err := s.Series(ctx, deviceID, metric, limit, dedupTS)
		if err != nil {
			return nil, err
		}
		byMetric[metric] = pts
	}
	return byMetric, nil
}
