package dashboard

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/YusufAkyuz/IoT-Project/internal/models"
)

// Summary aggregates one device's ingest history for the dashboard.
type Summary struct {
	DeviceID   string         `json:"device_id"`
	TotalRows  int64          `json:"total_rows"`
	AlertRows  int64          `json:"alert_rows"`
	AlertRatio float64        `json:"alert_ratio"`
	FirstAlert *string        `json:"first_alert_ts"`
	LastAlert  *string        `json:"last_alert_ts"`
	Latest     *models.Record `json:"latest"`
}

// Store provides read-only database access for the dashboard.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ListDevices returns distinct device_id values from the telemetry table.
func (s *Store) ListDevices(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, queryDistinctDevices)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	var devices []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan device_id: %w", err)
		}
		devices = append(devices, id)
	}
	return devices, rows.Err()
}

// Readings pages forward through a device's rows: it returns up to limit
// records with row_id strictly greater than afterID, ordered ascending.
func (s *Store) Readings(ctx context.Context, deviceID string, afterID int64, limit int) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx, queryReadingsAfter, deviceID, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("readings: %w", err)
	}
	defer rows.Close()

	var recs []models.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Summary returns per-device aggregates. A device with no rows yields a
// zero summary rather than an error.
func (s *Store) Summary(ctx context.Context, deviceID string) (Summary, error) {
	sum := Summary{DeviceID: deviceID}

	if err := s.db.QueryRowContext(ctx, querySummaryCounts, deviceID).
		Scan(&sum.TotalRows, &sum.AlertRows); err != nil {
		return Summary{}, fmt.Errorf("summary counts: %w", err)
	}
	if sum.TotalRows > 0 {
		sum.AlertRatio = float64(sum.AlertRows) / float64(sum.TotalRows)
	}

	var first, last sql.NullString
	if err := s.db.QueryRowContext(ctx, queryAlertBounds, deviceID).Scan(&first, &last); err != nil {
		return Summary{}, fmt.Errorf("alert bounds: %w", err)
	}
	if first.Valid {
		sum.FirstAlert = &first.String
	}
	if last.Valid {
		sum.LastAlert = &last.String
	}

	rows, err := s.db.QueryContext(ctx, queryLatestReading, deviceID)
	if err != nil {
		return Summary{}, fmt.Errorf("latest reading: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return Summary{}, err
		}
		sum.Latest = &rec
	}
	return sum, rows.Err()
}

func scanRecord(rows *sql.Rows) (models.Record, error) {
	var rec models.Record
	var alert int
	var ingested string
	if err := rows.Scan(
		&rec.RowID,
		&rec.DeviceID,
		&rec.TS,
		&rec.Temperature,
		&rec.Humidity,
		&rec.SoilMoisture,
		&rec.LightLevel,
		&rec.ClassCode,
		&alert,
		&ingested,
	); err != nil {
		return models.Record{}, fmt.Errorf("scan record: %w", err)
	}
	rec.AlertFlag = alert != 0
	if t, err := time.Parse(time.RFC3339Nano, ingested); err == nil {
		rec.IngestedAt = t
	}
	return rec, nil
}
