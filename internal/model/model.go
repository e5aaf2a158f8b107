package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFitted is returned by Predict on an estimator that has not been fitted.
	ErrNotFitted = errors.New("model is not fitted")
	// ErrEmptyTrainingSet is returned when Fit receives no rows.
	ErrEmptyTrainingSet = errors.New("empty training set")
	// ErrDimensionMismatch is returned when feature widths or lengths disagree.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrNoTrainedModels is returned when every candidate failed to fit.
	ErrNoTrainedModels = errors.New("no models trained successfully")
)

// Predictor is the only capability the comparison layer needs from a trained model.
// Predictions are returned in the same row order as X.
type Predictor interface {
	Predict(X [][]float64) ([]float64, error)
}

// Estimator is a Predictor that can be fitted.
type Estimator interface {
	Predictor
	Fit(X [][]float64, y []float64) error
}

// Named pairs a caller-supplied display name with a trained model.
type Named struct {
	Name  string
	Model Predictor
}

// TrainError records a candidate that failed to fit.
type TrainError struct {
	Name string
	Err  error
}

func (e *TrainError) Error() string {
	return fmt.Sprintf("train %s: %v", e.Name, e.Err)
}

func (e *TrainError) Unwrap() error { return e.Err }

// checkFit validates the shape of a training set and returns its feature width.
func checkFit(X [][]float64, y []float64) (int, error) {
	if len(X) == 0 {
		return 0, ErrEmptyTrainingSet
	}
	if len(X) != len(y) {
		return 0, fmt.Errorf("%w: %d rows, %d targets", ErrDimensionMismatch, len(X), len(y))
	}
	width := len(X[0])
	for i, row := range X {
		if len(row) != width {
			return 0, fmt.Errorf("%w: row %d has %d features, want %d", ErrDimensionMismatch, i, len(row), width)
		}
	}
	return width, nil
}

// checkPredict validates rows passed to Predict against the fitted width.
func checkPredict(X [][]float64, width int) error {
	for i, row := range X {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d features, want %d", ErrDimensionMismatch, i, len(row), width)
		}
	}
	return nil
}
