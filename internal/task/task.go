package task

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTask is returned when a task type is neither classification nor regression.
var ErrInvalidTask = errors.New("invalid task type")

// DefaultMaxClasses is the distinct-value threshold below which a target is
// treated as a classification label.
const DefaultMaxClasses = 10

// Type is the prediction task inferred for a target column.
type Type int

const (
	// Unknown is the zero value and is never valid for evaluation.
	Unknown Type = iota
	Classification
	Regression
)

// Parse converts "classification" or "regression" (case-insensitive) to a Type.
func Parse(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "classification":
		return Classification, nil
	case "regression":
		return Regression, nil
	default:
		return Unknown, fmt.Errorf("%w: %q", ErrInvalidTask, s)
	}
}

// Valid reports whether t is Classification or Regression.
func (t Type) Valid() bool { return t == Classification || t == Regression }

func (t Type) String() string {
	switch t {
	case Classification:
		return "classification"
	case Regression:
		return "regression"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Title returns the capitalized task name used in report headers.
func (t Type) Title() string {
	s := t.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// MarshalText implements encoding.TextMarshaler so the type serializes by name.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTask, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Identify infers the task from raw target values. Blank values are ignored.
// Fewer than maxClasses distinct values means classification; a non-positive
// maxClasses falls back to DefaultMaxClasses.
func Identify(values []string, maxClasses int) Type {
	if maxClasses <= 0 {
		maxClasses = DefaultMaxClasses
	}
	seen := make(map[string]struct{})
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		seen[v] = struct{}{}
	}
	if len(seen) < maxClasses {
		return Classification
	}
	return Regression
}
