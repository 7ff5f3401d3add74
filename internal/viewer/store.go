package viewer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/YusufAkyuz/IoT-Project/internal/models"
)

// Snapshot is one refresh worth of viewer state for a single device.
type Snapshot struct {
	TotalRows   int64
	AlertRows   int64
	LastIngest  time.Time // zero when the table is empty
	Lag         time.Duration
	RecentCount int64 // rows ingested within the rate window
	DupTSCount  int64
	LastRows    []models.Record // oldest first
}

// Store provides read-only snapshot queries.
type Store struct {
	db *sql.DB
}

// NewStore wraps a read-only store handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Snapshot gathers the viewer state in one pass. An empty or still-missing
// table yields a zero-count snapshot, not an error.
func (s *Store) Snapshot(ctx context.Context, deviceID string, lastN int, rateWindow time.Duration) (Snapshot, error) {
	var snap Snapshot

	if err := s.db.QueryRowContext(ctx, queryTotalRows, deviceID).Scan(&snap.TotalRows); err != nil {
		return Snapshot{}, fmt.Errorf("total rows: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, queryAlertRows, deviceID).Scan(&snap.AlertRows); err != nil {
		return Snapshot{}, fmt.Errorf("alert rows: %w", err)
	}

	var lastIngest string
	err := s.db.QueryRowContext(ctx, queryLastIngested, deviceID).Scan(&lastIngest)
	switch {
	case err == sql.ErrNoRows:
		// Empty table: nothing ingested yet.
	case err != nil:
		return Snapshot{}, fmt.Errorf("last ingested: %w", err)
	default:
		if t, perr := time.Parse(time.RFC3339Nano, lastIngest); perr == nil {
			snap.LastIngest = t
			snap.Lag = time.Since(t)
		}
	}

	since := time.Now().UTC().Add(-rateWindow).Format(models.TimestampLayout)
	if err := s.db.QueryRowContext(ctx, queryRecentCount, deviceID, since).Scan(&snap.RecentCount); err != nil {
		return Snapshot{}, fmt.Errorf("recent count: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, queryDupTS, deviceID).Scan(&snap.DupTSCount); err != nil {
		return Snapshot{}, fmt.Errorf("dup ts count: %w", err)
	}

	rows, err := s.lastRows(ctx, deviceID, lastN)
	if err != nil {
		return Snapshot{}, err
	}
	snap.LastRows = rows

	return snap, nil
}

// lastRows returns the newest n records, reordered oldest-first for display.
func (s *Store) lastRows(ctx context.Context, deviceID string, n int) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx, queryLastRows, deviceID, n)
	if err != nil {
		return nil, fmt.Errorf("last rows: %w", err)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	// Query returned newest-first; flip for a natural top-to-bottom read.
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	return recs, nil
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
