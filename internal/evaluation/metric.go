package evaluation

import (
	"fmt"

	"github.com/KaramelBytes/mlstart-cli/internal/task"
)

// Metric names produced by the evaluator.
const (
	Accuracy  = "Accuracy"
	Precision = "Precision"
	Recall    = "Recall"
	F1Score   = "F1 Score"
	MAE       = "MAE"
	MSE       = "MSE"
	RMSE      = "RMSE"
)

// Direction tells the comparator which end of a metric's range is better.
type Direction int

const (
	HigherIsBetter Direction = iota
	LowerIsBetter
)

func (d Direction) String() string {
	if d == LowerIsBetter {
		return "Lower is Better"
	}
	return "Higher is Better"
}

// Metric is a named score together with its sort direction.
type Metric struct {
	Name        string
	Direction   Direction
	Description string
}

var classificationMetrics = []Metric{
	{Name: Accuracy, Direction: HigherIsBetter, Description: "Measures the proportion of correct predictions."},
	{Name: Precision, Direction: HigherIsBetter, Description: "Measures how many selected items are relevant."},
	{Name: Recall, Direction: HigherIsBetter, Description: "Measures how many relevant items are selected."},
	{Name: F1Score, Direction: HigherIsBetter, Description: "Harmonic mean of precision and recall."},
}

var regressionMetrics = []Metric{
	{Name: MAE, Direction: LowerIsBetter, Description: "Mean Absolute Error: Average of absolute errors."},
	{Name: MSE, Direction: LowerIsBetter, Description: "Mean Squared Error: Average of squared errors."},
	{Name: RMSE, Direction: LowerIsBetter, Description: "Root Mean Squared Error: Square root of MSE."},
}

// MetricsFor returns the ordered metric set computed for a task.
func MetricsFor(t task.Type) ([]Metric, error) {
	switch t {
	case task.Classification:
		return append([]Metric(nil), classificationMetrics...), nil
	case task.Regression:
		return append([]Metric(nil), regressionMetrics...), nil
	default:
		return nil, fmt.Errorf("%w: %s", task.ErrInvalidTask, t)
	}
}

// LookupMetric finds a metric definition by name within a task's metric set.
func LookupMetric(t task.Type, name string) (Metric, bool) {
	ms, err := MetricsFor(t)
	if err != nil {
		return Metric{}, false
	}
	for _, m := range ms {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// DirectionFor resolves the direction of any metric name under a task.
// Classification metrics are always higher-is-better; under regression only
// the error metrics MAE, MSE and RMSE are lower-is-better.
func DirectionFor(t task.Type, name string) Direction {
	if m, ok := LookupMetric(t, name); ok {
		return m.Direction
	}
	if t == task.Regression {
		switch name {
		case MAE, MSE, RMSE:
			return LowerIsBetter
		}
	}
	return HigherIsBetter
}

// Score is one metric value for one model.
type Score struct {
	Metric string  `json:"metric" yaml:"metric"`
	Value  float64 `json:"value" yaml:"value"`
}

// Scores is an ordered metric-name to value mapping.
type Scores []Score

// Get returns the value recorded for metric.
func (s Scores) Get(metric string) (float64, bool) {
	for _, sc := range s {
		if sc.Metric == metric {
			return sc.Value, true
		}
	}
	return 0, false
}

// Names returns metric names in evaluation order.
func (s Scores) Names() []string {
	out := make([]string, len(s))
	for i, sc := range s {
		out[i] = sc.Metric
	}
	return out
}
