package plot

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/YusufAkyuz/IoT-Project/internal/models"
)

// MovingAverage smooths the series with a trailing window. The first
// window-1 samples average whatever prefix exists, so the output length
// always matches the input.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}

	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		n := min(i+1, window)
		out[i] = sum / float64(n)
	}
	return out
}

// Render draws the smoothed series as an ASCII chart with a caption
// summarizing the window and alert count.
func Render(metric, deviceID string, pts []Point, window int) string {
	if len(pts) == 0 {
		return fmt.Sprintf("no data for device %s\n", deviceID)
	}

	values := make([]float64, len(pts))
	alerts := 0
	for i, p := range pts {
		values[i] = p.Value
		if p.Alert {
			alerts++
		}
	}

	caption := fmt.Sprintf("%s %s, last %d rows (ma%d), %d alerts, %s .. %s",
		deviceID, metric, len(pts), window, alerts, pts[0].TS, pts[len(pts)-1].TS)

	return asciigraph.Plot(
		MovingAverage(values, window),
		asciigraph.Height(12),
		asciigraph.Width(0),
		asciigraph.Caption(caption),
	) + "\n"
}

// RenderAll draws one chart per metric, stacked top to bottom. The metrics
// span very different ranges (degrees vs lux), so separate charts beat a
// single shared axis.
func RenderAll(deviceID string, byMetric map[string][]Point, window int) string {
	var b strings.Builder
	for _, metric := range models.MetricNames {
		b.WriteString(Render(metric, deviceID, byMetric[metric], window))
		b.WriteByte('\n')
	}
	return b.String()
}
