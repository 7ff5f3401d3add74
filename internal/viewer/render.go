package viewer

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Render writes a snapshot as two tables: a summary line and the most
// recent rows.
func Render(w io.Writer, deviceID string, snap Snapshot, rateWindow time.Duration) {
	fmt.Fprintf(w, "greenhouse telemetry — device %s — %s\n\n", deviceID, time.Now().UTC().Format(time.RFC3339))

	summary := tablewriter.NewWriter(w)
	summary.SetHeader([]string{"rows", "alerts", "lag", fmt.Sprintf("rows/%s", rateWindow), "dup ts"})
	summary.Append([]string{
		strconv.FormatInt(snap.TotalRows, 10),
		strconv.FormatInt(snap.AlertRows, 10),
		fmtLag(snap),
		strconv.FormatInt(snap.RecentCount, 10),
		strconv.FormatInt(snap.DupTSCount, 10),
	})
	summary.Render()
	fmt.Fprintln(w)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"row_id", "ts", "temp", "humidity", "soil", "light", "class", "alert"})
	for _, rec := range snap.LastRows {
		alert := ""
		if rec.AlertFlag {
			alert = "!"
		}
		table.Append([]string{
			strconv.FormatInt(rec.RowID, 10),
			rec.TS,
			strconv.FormatFloat(rec.Temperature, 'f', 1, 64),
			strconv.FormatFloat(rec.Humidity, 'f', 1, 64),
			strconv.FormatFloat(rec.SoilMoisture, 'f', 1, 64),
			strconv.FormatFloat(rec.LightLevel, 'f', 1, 64),
			strconv.Itoa(rec.ClassCode),
			alert,
		})
	}
	table.Render()
}

func fmtLag(snap Snapshot) string {
	if snap.LastIngest.IsZero() {
		return "—"
	}
	return snap.Lag.Truncate(100 * time.Millisecond).String()
}
