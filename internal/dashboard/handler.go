package dashboard

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/YusufAkyuz/IoT-Project/internal/models"
)

// Handler exposes the dashboard HTTP endpoints.
type Handler struct {
	store     *Store
	pageLimit int
}

// NewHandler creates a Handler backed by the given Store. pageLimit caps
// how many readings a single page may return.
func NewHandler(store *Store, pageLimit int) *Handler {
	return &Handler{store: store, pageLimit: pageLimit}
}

// ---------------------------------------------------------------------------
// Response types
// ---------------------------------------------------------------------------

// DeviceItem is a single device in the list response.
type DeviceItem struct {
	ID string `json:"id"`
}

// DevicesResponse is the response for GET /api/v1/devices.
type DevicesResponse struct {
	Devices []DeviceItem `json:"devices"`
}

// ReadingsResponse is the response for GET /api/v1/devices/{id}/readings.
// NextAfterID is the cursor to pass as after_id on the next poll; it equals
// the request's after_id when no new rows arrived.
type ReadingsResponse struct {
	DeviceID    string          `json:"device_id"`
	Readings    []models.Record `json:"readings"`
	NextAfterID int64           `json:"next_after_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ---------------------------------------------------------------------------
// GET /api/v1/devices
// ---------------------------------------------------------------------------

// ListDevices returns the distinct device ids present in the store.
func (h *Handler) ListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.store.ListDevices(r.Context())
	if err != nil {
		slog.Error("list devices", "error", err)
		writeErr(w, http.StatusInternalServerError, "failed to list devices")
		return
	}

	items := make([]DeviceItem, len(devices))
	for i, id := range devices {
		items[i] = DeviceItem{ID: id}
	}
	writeJSON(w, http.StatusOK, DevicesResponse{Devices: items})
}

// ---------------------------------------------------------------------------
// GET /api/v1/devices/{id}/readings?after_id=N&limit=M
// ---------------------------------------------------------------------------

// GetReadings pages forward through a device's readings by row_id cursor.
func (h *Handler) GetReadings(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "id")
	if deviceID == "" {
		writeErr(w, http.StatusBadRequest, "device id is required")
		return
	}

	afterID, err := parseInt64(r.URL.Query().Get("after_id"), 0)
	if err != nil || afterID < 0 {
		writeErr(w, http.StatusBadRequest, "invalid after_id")
		return
	}

	limit64, err := parseInt64(r.URL.Query().Get("limit"), int64(h.pageLimit))
	if err != nil || limit64 <= 0 {
		writeErr(w, http.StatusBadRequest, "invalid limit")
		return
	}
	limit := int(limit64)
	if limit > h.pageLimit {
		limit = h.pageLimit
	}

	recs, err := h.store.Readings(r.Context(), deviceID, afterID, limit)
	if err != nil {
		slog.Error("get readings", "device_id", deviceID, "error", err)
		writeErr(w, http.StatusInternalServerError, "failed to fetch readings")
		return
	}
	if recs == nil {
		recs = []models.Record{}
	}

	next := afterID
	if len(recs) > 0 {
		next = recs[len(recs)-1].RowID
	}

	writeJSON(w, http.StatusOK, ReadingsResponse{
		DeviceID:    deviceID,
		Readings:    recs,
		NextAfterID: next,
	})
}

// ---------------------------------------------------------------------------
// GET /api/v1/devices/{id}/summary
// ---------------------------------------------------------------------------

// GetSummary returns per-device aggregates: totals, alert ratio, alert
// window, and the latest reading.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "id")
	if deviceID == "" {
		writeErr(w, http.StatusBadRequest, "device id is required")
		return
	}

	sum, err := h.store.Summary(r.Context(), deviceID)
	if err != nil {
		slog.Error("get summary", "device_id", deviceID, "error", err)
		writeErr(w, http.StatusInternalServerError, "failed to fetch summary")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func parseInt64(s string, fallback int64) (int64, error) {
	if s == "" {
		return fallback, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
