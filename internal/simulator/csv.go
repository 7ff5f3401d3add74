// Package simulator replays a greenhouse dataset row-by-row and publishes
// one telemetry message per reading onto the MQTT topic.
package simulator

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// SensorRow is a single dataset row. Label holds the raw class column value
// ("" when the dataset has no class column).
type SensorRow struct {
	TS           string
	Temperature  float64
	Humidity     float64
	SoilMoisture float64
	LightLevel   float64
	Label        string
}

// metricColumns are required in the CSV header (matched case-insensitively).
var metricColumns = []string{"temperature", "humidity", "soil_moisture", "light_level"}

// tsColumns and labelColumns are optional header candidates, first match wins.
var (
	tsColumns    = []string{"ts", "timestamp", "time", "datetime", "date"}
	labelColumns = []string{"class", "label", "y", "target"}
)

// ReadCSV loads and parses the dataset. Headers are matched
// case-insensitively. A missing metric column is an error; a row whose
// metric cells do not parse as floats is skipped with a warning so one bad
// row never stops a replay.
func ReadCSV(path string) ([]SensorRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1 // allow variable columns for safety

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, col := range metricColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("csv %q is missing required metric columns %v (found %v)", path, missing, header)
	}

	tsIdx := firstIndex(idx, tsColumns)
	labelIdx := firstIndex(idx, labelColumns)

	var rows []SensorRow
	skipped := 0
	lineNum := 1 // header was line 1
	for {
		lineNum++
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", lineNum, err)
		}

		row, ok := parseRow(record, idx, tsIdx, labelIdx)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, row)
	}

	if skipped > 0 {
		slog.Warn("skipped rows with unparseable metrics", "skipped", skipped, "path", path)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv %q contains no usable data rows", path)
	}
	return rows, nil
}

func parseRow(record []string, idx map[string]int, tsIdx, labelIdx int) (SensorRow, bool) {
	get := func(col string) (float64, bool) {
		i := idx[col]
		if i >= len(record) {
			return 0, false
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}

	var row SensorRow
	var ok bool
	if row.Temperature, ok = get("temperature"); !ok {
		return SensorRow{}, false
	}
	if row.Humidity, ok = get("humidity"); !ok {
		return SensorRow{}, false
	}
	if row.SoilMoisture, ok = get("soil_moisture"); !ok {
		return SensorRow{}, false
	}
	if row.LightLevel, ok = get("light_level"); !ok {
		return SensorRow{}, false
	}

	if tsIdx >= 0 && tsIdx < len(record) {
		row.TS = strings.TrimSpace(record[tsIdx])
	}
	if labelIdx >= 0 && labelIdx < len(record) {
		row.Label = strings.TrimSpace(record[labelIdx])
	}
	return row, true
}

// firstIndex returns the index of the first candidate present in the header
// map, or -1 when none is.
func firstIndex(idx map[string]int, candidates []string) int {
	for _, c := range candidates {
		if i, ok := idx[c]; ok {
			return i
		}
	}
	return -1
}
