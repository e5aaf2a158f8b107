package preprocess

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/mlstart-cli/internal/dataset"
	"github.com/KaramelBytes/mlstart-cli/internal/task"
	"gonum.org/v1/gonum/stat"
)

// Context carries what the steps need beyond the table itself.
type Context struct {
	Task   task.Type
	Target string
	// Numeric lists the columns identified as numeric before encoding.
	// Scaling and outlier handling only touch these.
	Numeric  []string
	Warnings []string
}

func (c *Context) warnf(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

func (c *Context) isNumeric(name string) bool {
	for _, n := range c.Numeric {
		if n == name {
			return true
		}
	}
	return false
}

// Step is one stage of the cleaning pipeline. Steps mutate the table in place.
type Step struct {
	Name  string
	Apply func(t *dataset.Table, c *Context) error
}

// RemoveInvalidColumns drops columns whose name is blank.
func RemoveInvalidColumns(t *dataset.Table, c *Context) error {
	for _, name := range t.Names() {
		if strings.TrimSpace(name) == "" {
			t.Drop(name)
			c.warnf("dropped unnamed column")
		}
	}
	return nil
}

// NormalizeMissing marks missing tokens as invalid. Numeric cells that fail
// to parse and categorical cells with no ASCII letters or digits are treated
// the same way.
func NormalizeMissing(t *dataset.Table, _ *Context) error {
	for _, col := range t.Columns {
		for i := range col.Cells {
			cell := &col.Cells[i]
			if !cell.Valid {
				continue
			}
			if dataset.IsMissing(cell.Str) {
				cell.Valid = false
				continue
			}
			switch col.Kind {
			case dataset.Numeric:
				v, ok := dataset.ParseFloat(cell.Str)
				cell.Num, cell.Valid = v, ok
			case dataset.Categorical:
				cell.Valid = hasAlnum(cell.Str)
			}
		}
	}
	return nil
}

func hasAlnum(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') {
			return true
		}
	}
	return false
}

// ImputeMissing fills numeric gaps with the column mean and categorical gaps
// with the most frequent value; equal counts go to the value seen first.
// Columns with no valid cell are dropped, except the target, which is an error.
func ImputeMissing(t *dataset.Table, c *Context) error {
	for _, col := range append([]*dataset.Column(nil), t.Columns...) {
		var nums []float64
		counts := map[string]int{}
		var order []string
		for _, cell := range col.Cells {
			if !cell.Valid {
				continue
			}
			if col.Kind == dataset.Numeric {
				nums = append(nums, cell.Num)
				continue
			}
			if counts[cell.Str] == 0 {
				order = append(order, cell.Str)
			}
			counts[cell.Str]++
		}
		if len(nums) == 0 && len(order) == 0 {
			if col.Name == c.Target {
				return fmt.Errorf("%w: %q", ErrEmptyTarget, col.Name)
			}
			t.Drop(col.Name)
			c.warnf("dropped column %q: no values present", col.Name)
			continue
		}

		fill := dataset.Cell{Valid: true}
		if col.Kind == dataset.Numeric {
			fill.Num = stat.Mean(nums, nil)
			fill.Str = strconv.FormatFloat(fill.Num, 'g', -1, 64)
		} else {
			best := order[0]
			for _, v := range order[1:] {
				if counts[v] > counts[best] {
					best = v
				}
			}
			fill.Str = best
		}
		filled := 0
		for i := range col.Cells {
			if !col.Cells[i].Valid {
				col.Cells[i] = fill
				filled++
			}
		}
		if filled > 0 {
			c.warnf("imputed %d missing values in %q", filled, col.Name)
		}
	}
	return nil
}

// EncodeCategorical turns categorical columns into numeric ones. For
// classification every column is label encoded over its sorted distinct
// values. For regression columns are one-hot expanded into name_value
// columns appended at the end. The target is always label encoded.
func EncodeCategorical(t *dataset.Table, c *Context) error {
	for _, col := range append([]*dataset.Column(nil), t.Columns...) {
		if col.Kind != dataset.Categorical {
			continue
		}
		values := distinct(col)
		if c.Task == task.Classification || col.Name == c.Target {
			index := make(map[string]int, len(values))
			for i, v := range values {
				index[v] = i
			}
			for i := range col.Cells {
				col.Cells[i].Num = float64(index[col.Cells[i].Str])
			}
			col.Kind = dataset.Numeric
			continue
		}

		added := make([]*dataset.Column, 0, len(values))
		for _, v := range values {
			name := col.Name + "_" + v
			if t.Column(name) != nil {
				return fmt.Errorf("one-hot encode %q: column %q already exists", col.Name, name)
			}
			oh := &dataset.Column{Name: name, Kind: dataset.Numeric, Cells: make([]dataset.Cell, len(col.Cells))}
			for i, cell := range col.Cells {
				oh.Cells[i] = dataset.Cell{Valid: true}
				if cell.Str == v {
					oh.Cells[i].Num = 1
				}
			}
			added = append(added, oh)
		}
		t.Drop(col.Name)
		t.Columns = append(t.Columns, added...)
	}
	return nil
}

func distinct(col *dataset.Column) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, cell := range col.Cells {
		if _, ok := seen[cell.Str]; ok {
			continue
		}
		seen[cell.Str] = struct{}{}
		out = append(out, cell.Str)
	}
	sort.Strings(out)
	return out
}

// ScaleNumeric standardizes the originally numeric feature columns to zero
// mean and unit population standard deviation. A constant column becomes 0.
func ScaleNumeric(t *dataset.Table, c *Context) error {
	for _, col := range t.Columns {
		if col.Name == c.Target || col.Kind != dataset.Numeric || !c.isNumeric(col.Name) {
			continue
		}
		xs := make([]float64, len(col.Cells))
		for i, cell := range col.Cells {
			xs[i] = cell.Num
		}
		if len(xs) == 0 {
			continue
		}
		mean, std := stat.PopMeanStdDev(xs, nil)
		for i := range col.Cells {
			if std == 0 {
				col.Cells[i].Num = 0
			} else {
				col.Cells[i].Num = (xs[i] - mean) / std
			}
		}
	}
	return nil
}

// RemoveDuplicates keeps the first occurrence of every identical row.
func RemoveDuplicates(t *dataset.Table, c *Context) error {
	n := t.Len()
	keep := make([]bool, n)
	seen := make(map[string]struct{}, n)
	var b strings.Builder
	removed := 0
	for i := 0; i < n; i++ {
		b.Reset()
		for _, col := range t.Columns {
			cell := col.Cells[i]
			if col.Kind == dataset.Numeric {
				b.WriteString(strconv.FormatFloat(cell.Num, 'g', -1, 64))
			} else {
				b.WriteString(cell.Str)
			}
			b.WriteByte(0x1f)
		}
		key := b.String()
		if _, dup := seen[key]; dup {
			removed++
			continue
		}
		seen[key] = struct{}{}
		keep[i] = true
	}
	if removed > 0 {
		t.KeepRows(keep)
		c.warnf("removed %d duplicate rows", removed)
	}
	return nil
}

// HandleOutliers filters rows outside 1.5 IQR of each numeric column in turn.
// Quartiles are read at sorted[int(n*0.25)] and sorted[int(n*0.75)] of the
// rows still present. It only applies to regression.
func HandleOutliers(t *dataset.Table, c *Context) error {
	if c.Task != task.Regression {
		return nil
	}
	before := t.Len()
	for _, name := range c.Numeric {
		col := t.Column(name)
		n := t.Len()
		if col == nil || col.Kind != dataset.Numeric || n == 0 {
			continue
		}
		sorted := make([]float64, n)
		for i, cell := range col.Cells {
			sorted[i] = cell.Num
		}
		sort.Float64s(sorted)
		q1 := sorted[int(float64(n)*0.25)]
		q3 := sorted[int(float64(n)*0.75)]
		iqr := q3 - q1
		lo, hi := q1-1.5*iqr, q3+1.5*iqr

		keep := make([]bool, n)
		for i, cell := range col.Cells {
			keep[i] = cell.Num >= lo && cell.Num <= hi
		}
		t.KeepRows(keep)
	}
	if removed := before - t.Len(); removed > 0 {
		c.warnf("removed %d outlier rows", removed)
	}
	return nil
}
