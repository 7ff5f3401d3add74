package edge

import (
	"fmt"

	"github.com/YusufAkyuz/IoT-Project/internal/models"
)

// Direction selects which side of the threshold raises an alert.
type Direction int

const (
	// Above flags readings whose metric exceeds the threshold.
	Above Direction = iota
	// Below flags readings whose metric falls under the threshold.
	Below
)

// ParseDirection maps the ALERT_DIRECTION config value to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "above":
		return Above, nil
	case "below":
		return Below, nil
	}
	return 0, fmt.Errorf("invalid alert direction %q (want above|below)", s)
}

// Evaluator computes the derived alert flag for a validated reading. It is
// a pure value-vs-threshold comparison over one configured metric field:
// the field, direction and threshold are fixed at startup, so the same
// reading always yields the same flag.
type Evaluator struct {
	field     string
	direction Direction
	threshold float64
}

// NewEvaluator validates the configured field and direction. A field name
// no reading carries is a startup error, not a per-message one.
func NewEvaluator(field, direction string, threshold float64) (Evaluator, error) {
	dir, err := ParseDirection(direction)
	if err != nil {
		return Evaluator{}, err
	}

	if _, ok := (models.Reading{}).Metric(field); !ok {
		return Evaluator{}, fmt.Errorf("invalid alert field %q (want one of %v)", field, models.MetricNames)
	}

	return Evaluator{field: field, direction: dir, threshold: threshold}, nil
}

// Alert reports whether the reading's configured metric crosses the
// threshold. The input is assumed validated: the field is present and
// finite by the time a reading reaches this stage.
func (e Evaluator) Alert(r models.Reading) bool {
	v, _ := r.Metric(e.field)
	if e.direction == Above {
		return v > e.threshold
	}
	return v < e.threshold
}

// Describe returns the rule in loggable form, e.g. "humidity above 50".
func (e Evaluator) Describe() string {
	dir := "above"
	if e.direction == Below {
		dir = "below"
	}
	return fmt.Sprintf("%s %s %g", e.field, dir, e.threshold)
}
