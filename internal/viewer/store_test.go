package viewer_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/YusufAkyuz/IoT-Project/internal/db"
	"github.com/YusufAkyuz/IoT-Project/internal/edge"
	"github.com/YusufAkyuz/IoT-Project/internal/models"
	"github.com/YusufAkyuz/IoT-Project/internal/viewer"
)

// seedStore migrates a fresh store and inserts the given records in order.
func seedStore(t *testing.T, recs []models.Record) *viewer.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "iot.db")
	writer, err := db.OpenWriter(context.Background(), path)
	if err != nil {
		t.Fatalf("open writer: %v", err)
	}
	if err := db.Migrate(writer); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	w := edge.NewWriter(writer, 0, time.Millisecond)
	for i, rec := range recs {
		if _, _, err := w.Insert(context.Background(), rec); err != nil {
			t.Fatalf("seed insert %d: %v", i, err)
		}
	}
	writer.Close()

	reader, err := db.OpenReader(context.Background(), path)
	if err != nil {
		t.Fatalf("open reader: %v", err)
	}
	t.Cleanup(func() { reader.Close() })

	return viewer.NewStore(reader)
}

func rec(ts string, humidity float64, alert bool) models.Record {
	return models.Record{
		DeviceID:     "gh_01",
		TS:           ts,
		Temperature:  22.0,
		Humidity:     humidity,
		SoilMoisture: 30.0,
		LightLevel:   420.0,
		AlertFlag:    alert,
		IngestedAt:   time.Now().UTC(),
	}
}

func TestSnapshot_CountsAndLastRows(t *testing.T) {
	recs := []models.Record{
		rec("2025-01-01T08:00:00Z", 45.0, false),
		rec("2025-01-01T08:01:00Z", 61.0, true),
		rec("2025-01-01T08:02:00Z", 55.0, true),
		rec("2025-01-01T08:03:00Z", 48.0, false),
	}
	store := seedStore(t, recs)

	snap, err := store.Snapshot(context.Background(), "gh_01", 3, time.Minute)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if snap.TotalRows != 4 {
		t.Errorf("total rows: got %d, want 4", snap.TotalRows)
	}
	if snap.AlertRows != 2 {
		t.Errorf("alert rows: got %d, want 2", snap.AlertRows)
	}
	if snap.RecentCount != 4 {
		t.Errorf("recent count within a minute of seeding: got %d, want 4", snap.RecentCount)
	}
	if snap.LastIngest.IsZero() {
		t.Error("last ingest should be set on a non-empty table")
	}

	if len(snap.LastRows) != 3 {
		t.Fatalf("last rows: got %d, want 3", len(snap.LastRows))
	}
	// Newest 3 rows, displayed oldest first.
	want := []string{"2025-01-01T08:01:00Z", "2025-01-01T08:02:00Z", "2025-01-01T08:03:00Z"}
	for i, w := range want {
		if snap.LastRows[i].TS != w {
			t.Errorf("row %d: ts %q, want %q", i, snap.LastRows[i].TS, w)
		}
	}
	if !snap.LastRows[1].AlertFlag {
		t.Error("alert flag lost in round trip")
	}
}

func TestSnapshot_EmptyTableYieldsZeroes(t *testing.T) {
	store := seedStore(t, nil)

	snap, err := store.Snapshot(context.Background(), "gh_01", 5, time.Minute)
	if err != nil {
		t.Fatalf("snapshot on empty table: %v", err)
	}
	if snap.TotalRows != 0 || snap.AlertRows != 0 || snap.DupTSCount != 0 {
		t.Errorf("expected zero counts, got %+v", snap)
	}
	if !snap.LastIngest.IsZero() {
		t.Errorf("last ingest on empty table: got %v, want zero", snap.LastIngest)
	}
	if len(snap.LastRows) != 0 {
		t.Errorf("last rows on empty table: got %d", len(snap.LastRows))
	}
}

func TestSnapshot_RateWindowExcludesOldRows(t *testing.T) {
	old := rec("2025-01-01T08:00:00Z", 45.0, false)
	old.IngestedAt = time.Now().UTC().Add(-5 * time.Minute)
	store := seedStore(t, []models.Record{
		old,
		rec("2025-01-01T08:01:00Z", 46.0, false),
	})

	snap, err := store.Snapshot(context.Background(), "gh_01", 5, time.Minute)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.TotalRows != 2 {
		t.Errorf("total rows: got %d, want 2", snap.TotalRows)
	}
	if snap.RecentCount != 1 {
		t.Errorf("recent count: got %d, want 1 (old row outside the window)", snap.RecentCount)
	}
}

func TestSnapshot_CountsDuplicateSenderTimestamps(t *testing.T) {
	recs := []models.Record{
		rec("2025-01-01T08:00:00Z", 45.0, false),
		rec("2025-01-01T08:00:00Z", 45.0, false), // redelivery
		rec("2025-01-01T08:00:00Z", 45.0, false), // redelivery
		rec("2025-01-01T08:01:00Z", 46.0, false),
	}
	store := seedStore(t, recs)

	snap, err := store.Snapshot(context.Background(), "gh_01", 5, time.Minute)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.TotalRows != 4 {
		t.Errorf("duplicates must all be stored: got %d rows, want 4", snap.TotalRows)
	}
	if snap.DupTSCount != 2 {
		t.Errorf("dup ts count: got %d, want 2 surplus rows", snap.DupTSCount)
	}
}

func TestSnapshot_FiltersByDevice(t *testing.T) {
	other := rec("2025-01-01T08:00:00Z", 45.0, false)
	other.DeviceID = "gh_02"
	store := seedStore(t, []models.Record{
		rec("2025-01-01T08:00:00Z", 61.0, true),
		other,
	})

	snap, err := store.Snapshot(context.Background(), "gh_01", 5, time.Minute)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.TotalRows != 1 {
		t.Errorf("device filter: got %d rows, want 1", snap.TotalRows)
	}

	for i := range snap.LastRows {
		if snap.LastRows[i].DeviceID != "gh_01" {
			t.Errorf("row %d leaked from device %q", i, snap.LastRows[i].DeviceID)
		}
	}
}
