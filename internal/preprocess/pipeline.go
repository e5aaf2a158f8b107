// Package preprocess cleans a typed table into an all-numeric feature set.
package preprocess

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/mlstart-cli/internal/dataset"
	"github.com/KaramelBytes/mlstart-cli/internal/task"
)

var (
	// ErrEmptyTarget is returned when the target column has no usable value.
	ErrEmptyTarget = errors.New("target column has no values")
	// ErrNoRows is returned when cleaning removes every row.
	ErrNoRows = errors.New("no rows left after preprocessing")
)

// Pipeline runs the cleaning steps in a fixed order.
type Pipeline struct {
	Task   task.Type
	Target string
	Logger *slog.Logger
}

// Steps returns the ordered cleaning steps.
func (p *Pipeline) Steps() []Step {
	return []Step{
		{Name: "remove invalid columns", Apply: RemoveInvalidColumns},
		{Name: "normalize missing values", Apply: NormalizeMissing},
		{Name: "impute missing values", Apply: ImputeMissing},
		{Name: "encode categorical", Apply: EncodeCategorical},
		{Name: "scale numeric", Apply: ScaleNumeric},
		{Name: "remove duplicates", Apply: RemoveDuplicates},
		{Name: "handle outliers", Apply: HandleOutliers},
	}
}

// Run applies every step to a copy of t and returns the cleaned table with
// the warnings collected along the way. The input table is not modified.
func (p *Pipeline) Run(t *dataset.Table) (*dataset.Table, []string, error) {
	if !p.Task.Valid() {
		return nil, nil, fmt.Errorf("%w: %s", task.ErrInvalidTask, p.Task)
	}
	if t.Column(p.Target) == nil {
		return nil, nil, fmt.Errorf("%w: %q", dataset.ErrTargetNotFound, p.Target)
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	out := t.Clone()
	c := &Context{Task: p.Task, Target: p.Target}
	for _, col := range out.Columns {
		if col.Kind == dataset.Numeric {
			c.Numeric = append(c.Numeric, col.Name)
		}
	}
	for _, s := range p.Steps() {
		if err := s.Apply(out, c); err != nil {
			return nil, c.Warnings, fmt.Errorf("%s: %w", s.Name, err)
		}
		logger.Debug("preprocess step", "step", s.Name, "rows", out.Len(), "columns", len(out.Columns))
	}
	if out.Len() == 0 {
		return nil, c.Warnings, ErrNoRows
	}
	return out, c.Warnings, nil
}
