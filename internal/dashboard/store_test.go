package dashboard_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/YusufAkyuz/IoT-Project/internal/dashboard"
	"github.com/YusufAkyuz/IoT-Project/internal/db"
	"github.com/YusufAkyuz/IoT-Project/internal/edge"
	"github.com/YusufAkyuz/IoT-Project/internal/models"
)

func seedStore(t *testing.T, recs []models.Record) *dashboard.Store {
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

	return dashboard.NewStore(reader)
}

func rec(device, ts string, humidity float64, alert bool) models.Record {
	return models.Record{
		DeviceID:     device,
		TS:           ts,
		Temperature:  22.0,
		Humidity:     humidity,
		SoilMoisture: 30.0,
		LightLevel:   420.0,
		AlertFlag:    alert,
		IngestedAt:   time.Now().UTC(),
	}
}

func TestListDevices(t *testing.T) {
	store := seedStore(t, []models.Record{
		rec("gh_02", "2025-01-01T08:00:00Z", 45.0, false),
		rec("gh_01", "2025-01-01T08:00:00Z", 45.0, false),
		rec("gh_01", "2025-01-01T08:01:00Z", 46.0, false),
	})

	devices, err := store.ListDevices(context.Background())
	if err != nil {
		t.Fatalf("list devices: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("devices: got %v, want 2 distinct ids", devices)
	}
}

func TestReadings_CursorPagesForward(t *testing.T) {
	store := seedStore(t, []models.Record{
		rec("gh_01", "2025-01-01T08:00:00Z", 45.0, false),
		rec("gh_01", "2025-01-01T08:01:00Z", 48.0, false),
		rec("gh_01", "2025-01-01T08:02:00Z", 61.0, true),
		rec("gh_01", "2025-01-01T08:03:00Z", 55.0, true),
	})

	page1, err := store.Readings(context.Background(), "gh_01", 0, 2)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(page1) != 2 {
		t.Fatalf("page 1: got %d rows, want 2", len(page1))
	}
	if page1[0].RowID >= page1[1].RowID {
		t.Errorf("page must be ascending by row_id: %d, %d", page1[0].RowID, page1[1].RowID)
	}

	page2, err := store.Readings(context.Background(), "gh_01", page1[1].RowID, 10)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(page2) != 2 {
		t.Fatalf("page 2: got %d rows, want 2", len(page2))
	}
	if page2[0].RowID <= page1[1].RowID {
		t.Errorf("cursor is exclusive: page 2 starts at %d after %d", page2[0].RowID, page1[1].RowID)
	}

	// Re-polling the same cursor returns the same rows: no skips, no dups.
	again, err := store.Readings(context.Background(), "gh_01", page1[1].RowID, 10)
	if err != nil {
		t.Fatalf("re-poll: %v", err)
	}
	if len(again) != len(page2) || again[0].RowID != page2[0].RowID {
		t.Error("same cursor must yield the same page")
	}

	empty, err := store.Readings(context.Background(), "gh_01", page2[1].RowID, 10)
	if err != nil {
		t.Fatalf("past end: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("cursor past the last row: got %d rows, want 0", len(empty))
	}
}

func TestSummary(t *testing.T) {
	store := seedStore(t, []models.Record{
		rec("gh_01", "2025-01-01T08:00:00Z", 45.0, false),
		rec("gh_01", "2025-01-01T08:01:00Z", 61.0, true),
		rec("gh_01", "2025-01-01T08:02:00Z", 63.0, true),
		rec("gh_01", "2025-01-01T08:03:00Z", 48.0, false),
	})

	sum, err := store.Summary(context.Background(), "gh_01")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if sum.TotalRows != 4 || sum.AlertRows != 2 {
		t.Errorf("counts: got total=%d alerts=%d", sum.TotalRows, sum.AlertRows)
	}
	if sum.AlertRatio != 0.5 {
		t.Errorf("alert ratio: got %v, want 0.5", sum.AlertRatio)
	}
	if sum.FirstAlert == nil || *sum.FirstAlert != "2025-01-01T08:01:00Z" {
		t.Errorf("first alert: got %v", sum.FirstAlert)
	}
	if sum.LastAlert == nil || *sum.LastAlert != "2025-01-01T08:02:00Z" {
		t.Errorf("last alert: got %v", sum.LastAlert)
	}
	if sum.Latest == nil || sum.Latest.TS != "2025-01-01T08:03:00Z" {
		t.Errorf("latest: got %+v", sum.Latest)
	}
}

func TestSummary_UnknownDeviceIsZero(t *testing.T) {
	store := seedStore(t, []models.Record{
		rec("gh_01", "2025-01-01T08:00:00Z", 45.0, false),
	})

	sum, err := store.Summary(context.Background(), "gh_99")
	if err != nil {
		t.Fatalf("summary for unknown device: %v", err)
	}
	if sum.TotalRows != 0 || sum.AlertRows != 0 || sum.AlertRatio != 0 {
		t.Errorf("expected zero summary, got %+v", sum)
	}
	if sum.FirstAlert != nil || sum.LastAlert != nil || sum.Latest != nil {
		t.Errorf("expected nil alert bounds and latest, got %+v", sum)
	}
}
