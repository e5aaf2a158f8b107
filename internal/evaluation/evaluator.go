package evaluation

import (
	"errors"
	"fmt"
	"math"

	"github.com/KaramelBytes/mlstart-cli/internal/model"
	"github.com/KaramelBytes/mlstart-cli/internal/task"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrLengthMismatch is returned when features, targets or predictions disagree in length.
	ErrLengthMismatch = errors.New("length mismatch")
	// ErrEmptyTestSet is returned when there are no rows to evaluate on.
	ErrEmptyTestSet = errors.New("empty test set")
)

// positiveLabel is the class treated as positive by precision and recall.
const positiveLabel = 1

// Evaluator computes the task's metric set for one model against one test set.
// It holds no state besides its task type and is safe for concurrent use.
type Evaluator struct {
	task task.Type
}

// NewEvaluator returns an evaluator for t, rejecting anything other than
// classification or regression.
func NewEvaluator(t task.Type) (*Evaluator, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %s", task.ErrInvalidTask, t)
	}
	return &Evaluator{task: t}, nil
}

// Evaluate calls m.Predict once on X and scores the predictions against y.
func (e *Evaluator) Evaluate(m model.Predictor, X [][]float64, y []float64) (Scores, error) {
	if !e.task.Valid() {
		return nil, fmt.Errorf("%w: %s", task.ErrInvalidTask, e.task)
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("%w: %d feature rows, %d targets", ErrLengthMismatch, len(X), len(y))
	}
	if len(y) == 0 {
		return nil, ErrEmptyTestSet
	}
	pred, err := m.Predict(X)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if len(pred) != len(y) {
		return nil, fmt.Errorf("%w: %d predictions, %d targets", ErrLengthMismatch, len(pred), len(y))
	}

	if e.task == task.Classification {
		p := PrecisionScore(y, pred)
		r := RecallScore(y, pred)
		return Scores{
			{Metric: Accuracy, Value: AccuracyScore(y, pred)},
			{Metric: Precision, Value: p},
			{Metric: Recall, Value: r},
			{Metric: F1Score, Value: F1(p, r)},
		}, nil
	}
	mse := MeanSquaredError(y, pred)
	return Scores{
		{Metric: MAE, Value: MeanAbsoluteError(y, pred)},
		{Metric: MSE, Value: mse},
		{Metric: RMSE, Value: math.Sqrt(mse)},
	}, nil
}

// AccuracyScore is the fraction of positions where truth equals prediction.
// The slices must be non-empty and aligned.
func AccuracyScore(yTrue, yPred []float64) float64 {
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue))
}

// PrecisionScore is tp/(tp+fp) for the positive class, or 0 with no positive predictions.
func PrecisionScore(yTrue, yPred []float64) float64 {
	var tp, fp int
	for i := range yTrue {
		if yPred[i] != positiveLabel {
			continue
		}
		if yTrue[i] == yPred[i] {
			tp++
		} else {
			fp++
		}
	}
	if tp+fp == 0 {
		return 0
	}
	return float64(tp) / float64(tp+fp)
}

// RecallScore is tp/(tp+fn), where a false negative is a mismatch predicted as 0.
// It is 0 when the denominator is 0.
func RecallScore(yTrue, yPred []float64) float64 {
	var tp, fn int
	for i := range yTrue {
		switch {
		case yTrue[i] == yPred[i] && yPred[i] == positiveLabel:
			tp++
		case yTrue[i] != yPred[i] && yPred[i] == 0:
			fn++
		}
	}
	if tp+fn == 0 {
		return 0
	}
	return float64(tp) / float64(tp+fn)
}

// F1 is the harmonic mean of precision and recall, 0 when both are 0.
func F1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

// MeanAbsoluteError is the mean of |truth - prediction|.
func MeanAbsoluteError(yTrue, yPred []float64) float64 {
	diffs := make([]float64, len(yTrue))
	for i := range yTrue {
		diffs[i] = math.Abs(yTrue[i] - yPred[i])
	}
	return stat.Mean(diffs, nil)
}

// MeanSquaredError is the mean of (truth - prediction)^2.
func MeanSquaredError(yTrue, yPred []float64) float64 {
	diffs := make([]float64, len(yTrue))
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		diffs[i] = d * d
	}
	return stat.Mean(diffs, nil)
}
