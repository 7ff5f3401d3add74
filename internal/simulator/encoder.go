package simulator

import "strconv"

// LabelEncoder maps categorical class labels to integer codes. Codes are
// assigned in first-seen order and are stable within a run: the same label
// always yields the same code. Labels that are already integers pass
// through unchanged, and an absent label encodes to 0.
type LabelEncoder struct {
	codes map[string]int
	next  int
}

// NewLabelEncoder creates an empty encoder.
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{codes: make(map[string]int)}
}

// Encode returns the integer code for the given label.
func (e *LabelEncoder) Encode(label string) int {
	if label == "" {
		return 0
	}
	if n, err := strconv.Atoi(label); err == nil {
		return n
	}
	if code, ok := e.codes[label]; ok {
		return code
	}
	code := e.next
	e.codes[label] = code
	e.next++
	return code
}
