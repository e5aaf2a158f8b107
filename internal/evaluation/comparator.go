package evaluation

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/mlstart-cli/internal/model"
	"github.com/KaramelBytes/mlstart-cli/internal/task"
)

var (
	// ErrNoModels is returned when Compare receives an empty model list.
	ErrNoModels = errors.New("no models to compare")
	// ErrDuplicateModel is returned when two models share a display name.
	ErrDuplicateModel = errors.New("duplicate model name")
	// ErrUnknownMetric is returned for a primary metric outside the task's metric set.
	ErrUnknownMetric = errors.New("unknown metric")
)

// Rank is a model's ordinal position on one metric, 1 being best.
type Rank struct {
	Metric string `json:"metric" yaml:"metric"`
	Rank   int    `json:"rank" yaml:"rank"`
}

// ModelResult holds everything computed for one model during a comparison.
type ModelResult struct {
	Name        string
	Model       model.Predictor
	Scores      Scores
	Ranks       []Rank
	AverageRank float64
}

// RankOf returns the model's rank on metric.
func (m ModelResult) RankOf(metric string) (int, bool) {
	for _, r := range m.Ranks {
		if r.Metric == metric {
			return r.Rank, true
		}
	}
	return 0, false
}

// Result is the output of Compare. Models keep the caller's input order.
type Result struct {
	Task     task.Type
	BestName string
	// Best is the caller's own model value for BestName, not a copy.
	Best   model.Predictor
	Models []ModelResult
}

// Lookup returns the result for a model name.
func (r *Result) Lookup(name string) (ModelResult, bool) {
	for _, m := range r.Models {
		if m.Name == name {
			return m, true
		}
	}
	return ModelResult{}, false
}

// Scores returns the metric values recorded for a model name.
func (r *Result) Scores(name string) (Scores, bool) {
	m, ok := r.Lookup(name)
	return m.Scores, ok
}

// Ranks returns the per-metric ranks and the average rank for a model name.
func (r *Result) Ranks(name string) ([]Rank, float64, bool) {
	m, ok := r.Lookup(name)
	return m.Ranks, m.AverageRank, ok
}

// MetricNames returns the metric names shared by every model, in evaluation order.
func (r *Result) MetricNames() []string {
	if len(r.Models) == 0 {
		return nil
	}
	return r.Models[0].Scores.Names()
}

// ComparatorOption configures a Comparator.
type ComparatorOption func(*Comparator)

// WithPrimaryMetric names a metric used to break exact average-rank ties.
// Without it ties go to the earliest model in input order.
func WithPrimaryMetric(name string) ComparatorOption {
	return func(c *Comparator) { c.primary = name }
}

// Comparator evaluates a batch of trained models, ranks them per metric and
// picks the one with the lowest average rank.
type Comparator struct {
	task      task.Type
	primary   string
	evaluator *Evaluator
}

// NewComparator validates the task and options eagerly so a bad task type is
// reported even when no models are later supplied.
func NewComparator(t task.Type, opts ...ComparatorOption) (*Comparator, error) {
	ev, err := NewEvaluator(t)
	if err != nil {
		return nil, err
	}
	c := &Comparator{task: t, evaluator: ev}
	for _, opt := range opts {
		opt(c)
	}
	if c.primary != "" {
		if _, ok := LookupMetric(t, c.primary); !ok {
			return nil, fmt.Errorf("%w: %q is not a %s metric", ErrUnknownMetric, c.primary, t)
		}
	}
	return c, nil
}

// PrimaryMetric returns the configured tie-break metric, or "".
func (c *Comparator) PrimaryMetric() string { return c.primary }

// Compare scores every model on the test set and selects the best one.
//
// Ranks per metric are strict 1..N. Equal values keep input order (stable
// sort), so for exact ties the earlier model gets the better rank. NaN
// scores rank behind every number. The best
// model has the minimum average rank; equal averages also resolve to the
// earlier model unless a primary metric is configured, in which case the
// better rank on that metric wins first.
func (c *Comparator) Compare(models []model.Named, X [][]float64, y []float64) (*Result, error) {
	if len(models) == 0 {
		return nil, ErrNoModels
	}
	seen := make(map[string]struct{}, len(models))
	for _, m := range models {
		if _, dup := seen[m.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateModel, m.Name)
		}
		seen[m.Name] = struct{}{}
	}

	res := &Result{Task: c.task, Models: make([]ModelResult, len(models))}
	for i, m := range models {
		scores, err := c.evaluator.Evaluate(m.Model, X, y)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", m.Name, err)
		}
		res.Models[i] = ModelResult{Name: m.Name, Model: m.Model, Scores: scores}
	}

	for _, metric := range res.Models[0].Scores.Names() {
		c.rankMetric(res.Models, metric)
	}
	for i := range res.Models {
		mr := &res.Models[i]
		sum := 0
		for _, r := range mr.Ranks {
			sum += r.Rank
		}
		if len(mr.Ranks) > 0 {
			mr.AverageRank = float64(sum) / float64(len(mr.Ranks))
		}
	}

	best := 0
	for i := 1; i < len(res.Models); i++ {
		if c.better(res.Models[i], res.Models[best]) {
			best = i
		}
	}
	res.BestName = res.Models[best].Name
	res.Best = res.Models[best].Model
	return res, nil
}

// rankMetric appends each model's rank on metric to its Ranks.
func (c *Comparator) rankMetric(results []ModelResult, metric string) {
	type entry struct {
		idx   int
		value float64
	}
	entries := make([]entry, len(results))
	for i, mr := range results {
		v, _ := mr.Scores.Get(metric)
		entries[i] = entry{idx: i, value: v}
	}
	dir := DirectionFor(c.task, metric)
	sort.SliceStable(entries, func(a, b int) bool {
		// NaN ranks last under either direction.
		na, nb := math.IsNaN(entries[a].value), math.IsNaN(entries[b].value)
		if na || nb {
			return !na && nb
		}
		if dir == LowerIsBetter {
			return entries[a].value < entries[b].value
		}
		return entries[a].value > entries[b].value
	})
	for pos, e := range entries {
		results[e.idx].Ranks = append(results[e.idx].Ranks, Rank{Metric: metric, Rank: pos + 1})
	}
}

// better reports whether a should replace the current best b. a always comes
// later in input order than b.
func (c *Comparator) better(a, b ModelResult) bool {
	if a.AverageRank != b.AverageRank {
		return a.AverageRank < b.AverageRank
	}
	if c.primary == "" {
		return false
	}
	ra, _ := a.RankOf(c.primary)
	rb, _ := b.RankOf(c.primary)
	return ra < rb
}
