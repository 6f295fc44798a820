package task

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Priority is the importance of a task. As a sort filter, PriorityNone
// means no filter.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
	PriorityNone   Priority = "NONE"
)

// Priorities lists all priorities in declaration order.
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow, PriorityNone}
}

// ParsePriority parses a priority name. It is case-insensitive and accepts
// single-letter short forms (h, m, l, n).
func ParsePriority(s string) (Priority, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH", "H":
		return PriorityHigh, nil
	case "MEDIUM", "M":
		return PriorityMedium, nil
	case "LOW", "L":
		return PriorityLow, nil
	case "NONE", "N", "":
		return PriorityNone, nil
	default:
		return "", fmt.Errorf("invalid priority %q, must be one of: high, medium, low, none", s)
	}
}

// Valid returns true if p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow, PriorityNone:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (p Priority) String() string {
	return string(p)
}

// AscRank orders priorities LOW, MEDIUM, HIGH, NONE.
func (p Priority) AscRank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	default:
		return 4
	}
}

// DescRank orders priorities HIGH, MEDIUM, LOW, NONE.
func (p Priority) DescRank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// UnmarshalJSON accepts any spelling ParsePriority accepts.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("priority must be a string: %w", err)
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
