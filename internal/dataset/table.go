package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/mlstart-cli/internal/task"
)

// ErrNotNumeric is returned when a column still holds non-numeric or missing
// cells at the point features are extracted.
var ErrNotNumeric = errors.New("column is not numeric")

// Kind is the inferred type of a column.
type Kind int

const (
	Numeric Kind = iota + 1
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return "unknown"
	}
}

var missingTokens = map[string]struct{}{
	"": {}, "null": {}, "nan": {}, "?": {}, "none": {},
}

// IsMissing reports whether a raw value is one of the missing-value tokens.
func IsMissing(s string) bool {
	_, ok := missingTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// ParseFloat parses a trimmed numeric value.
func ParseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// IdentifyColumns classifies every named column by its first non-missing value:
// numeric if it parses as a float, categorical otherwise. Columns with a blank
// name are skipped; columns with no values at all are reported as numeric.
func IdentifyColumns(f *Frame) (numeric, categorical []string, err error) {
	if f == nil || len(f.Header) == 0 || len(f.Records) == 0 {
		return nil, nil, ErrEmptyDataset
	}
	for j, name := range f.Header {
		if strings.TrimSpace(name) == "" {
			continue
		}
		kind := Numeric
		for _, rec := range f.Records {
			v := rec[j]
			if IsMissing(v) {
				continue
			}
			if _, ok := ParseFloat(v); !ok {
				kind = Categorical
			}
			break
		}
		if kind == Numeric {
			numeric = append(numeric, name)
		} else {
			categorical = append(categorical, name)
		}
	}
	return numeric, categorical, nil
}

// Cell is one value. Num is meaningful for numeric columns, Str for categorical.
// Valid is false for missing or rejected values.
type Cell struct {
	Str   string
	Num   float64
	Valid bool
}

// Column is a named, typed column of cells.
type Column struct {
	Name  string
	Kind  Kind
	Cells []Cell
}

// Table is a column-oriented dataset; every column has the same length.
type Table struct {
	Columns []*Column
}

// NewTable builds a table from a frame. Columns listed in numeric become
// Numeric; every other column, including blank-named ones, is Categorical.
// Cells start valid with their trimmed raw text.
func NewTable(f *Frame, numeric []string) *Table {
	isNum := make(map[string]bool, len(numeric))
	for _, n := range numeric {
		isNum[n] = true
	}
	t := &Table{Columns: make([]*Column, len(f.Header))}
	for j, name := range f.Header {
		col := &Column{Name: name, Kind: Categorical, Cells: make([]Cell, len(f.Records))}
		if isNum[name] && strings.TrimSpace(name) != "" {
			col.Kind = Numeric
		}
		for i, rec := range f.Records {
			col.Cells[i] = Cell{Str: strings.TrimSpace(rec[j]), Valid: true}
		}
		t.Columns[j] = col
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

// Column returns a column by name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Drop removes a column by name and reports whether it existed.
func (t *Table) Drop(name string) bool {
	for i, c := range t.Columns {
		if c.Name == name {
			t.Columns = append(t.Columns[:i], t.Columns[i+1:]...)
			return true
		}
	}
	return false
}

// KeepRows retains only rows where keep[i] is true.
func (t *Table) KeepRows(keep []bool) {
	for _, c := range t.Columns {
		out := c.Cells[:0]
		for i, cell := range c.Cells {
			if keep[i] {
				out = append(out, cell)
			}
		}
		c.Cells = out
	}
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := &Table{Columns: make([]*Column, len(t.Columns))}
	for i, c := range t.Columns {
		out.Columns[i] = &Column{Name: c.Name, Kind: c.Kind, Cells: append([]Cell(nil), c.Cells...)}
	}
	return out
}

// Split extracts the feature matrix and the target vector. Every remaining
// column must be numeric with no missing cells. Classification targets are
// truncated to integer labels.
func Split(t *Table, target string, tt task.Type) (X [][]float64, y []float64, features []string, err error) {
	if !tt.Valid() {
		return nil, nil, nil, fmt.Errorf("%w: %s", task.ErrInvalidTask, tt)
	}
	tc := t.Column(target)
	if tc == nil {
		return nil, nil, nil, fmt.Errorf("%w: %q", ErrTargetNotFound, target)
	}
	var feats []*Column
	for _, c := range t.Columns {
		if c == tc {
			continue
		}
		if err := requireNumeric(c); err != nil {
			return nil, nil, nil, err
		}
		feats = append(feats, c)
		features = append(features, c.Name)
	}
	if err := requireNumeric(tc); err != nil {
		return nil, nil, nil, err
	}
	n := t.Len()
	X = make([][]float64, n)
	y = make([]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, len(feats))
		for j, c := range feats {
			row[j] = c.Cells[i].Num
		}
		X[i] = row
		v := tc.Cells[i].Num
		if tt == task.Classification {
			v = math.Trunc(v)
		}
		y[i] = v
	}
	return X, y, features, nil
}

func requireNumeric(c *Column) error {
	if c.Kind != Numeric {
		return fmt.Errorf("%w: %q is %s", ErrNotNumeric, c.Name, c.Kind)
	}
	for i, cell := range c.Cells {
		if !cell.Valid {
			return fmt.Errorf("%w: %q has a missing value at row %d", ErrNotNumeric, c.Name, i+1)
		}
	}
	return nil
}
