package edge

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/YusufAkyuz/IoT-Project/internal/models"
)

// WriteOutcome reports how an insert concluded: committed on the first
// attempt, committed after retries, or dropped after the budget ran out.
type WriteOutcome int

const (
	WriteOK WriteOutcome = iota
	WriteRetried
	WriteDropped
)

// RecordWriter abstracts record persistence so the pipeline loop can be
// tested with a mock.
type RecordWriter interface {
	Insert(ctx context.Context, rec models.Record) (int64, WriteOutcome, error)
}

// Writer appends records to the SQLite store. It never updates or deletes
// rows. All calls come from the single pipeline goroutine, so the struct
// needs no locks; the store's WAL mode is what keeps concurrent readers
// consistent.
type Writer struct {
	db      *sql.DB
	retries int
	backoff time.Duration
}

// NewWriter wraps the open writer handle. retries is the number of extra
// attempts after the first failure; backoff doubles per attempt.
func NewWriter(db *sql.DB, retries int, backoff time.Duration) *Writer {
	return &Writer{db: db, retries: retries, backoff: backoff}
}

// Insert commits one record and returns its row_id. Transient failures
// (locked store, busy disk) are retried up to the budget with exponential
// backoff; on exhaustion the record is dropped and a *WriteError returned.
// A dropped reading is an accepted loss — crashing the pipeline is not.
func (w *Writer) Insert(ctx context.Context, rec models.Record) (int64, WriteOutcome, error) {
	alert := 0
	if rec.AlertFlag {
		alert = 1
	}

	var lastErr error
	delay := w.backoff

	for attempt := 0; attempt <= w.retries; attempt++ {
		if attempt > 0 {
			writeRetriesTotal.Inc()
			slog.Warn("store write retry",
				"device_id", rec.DeviceID,
				"attempt", attempt,
				"error", lastErr,
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return 0, WriteDropped, &WriteError{Attempts: attempt, Err: ctx.Err()}
			}
			delay *= 2
		}

		var rowID int64
		err := w.db.QueryRowContext(ctx, queryInsertReading,
			rec.DeviceID,
			rec.TS,
			rec.Temperature,
			rec.Humidity,
			rec.SoilMoisture,
			rec.LightLevel,
			rec.ClassCode,
			alert,
			rec.IngestedAt.UTC().Format(models.TimestampLayout),
		).Scan(&rowID)
		if err == nil {
			if attempt > 0 {
				return rowID, WriteRetried, nil
			}
			return rowID, WriteOK, nil
		}
		lastErr = err
	}

	return 0, WriteDropped, &WriteError{Attempts: w.retries + 1, Err: lastErr}
}
