package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KaramelBytes/mlstart-cli/internal/task"
	"golang.org/x/sync/errgroup"
)

// Options tunes the baseline estimators. Zero values select defaults.
type Options struct {
	RidgeAlpha      float64
	KNNNeighbors    int
	TreeMaxDepth    int
	LogisticMaxIter int
}

// Candidate is a named constructor for an unfitted estimator.
type Candidate struct {
	Name string
	New  func() Estimator
}

// Candidates returns the baseline model set for a task, in report order.
func Candidates(t task.Type, opt Options) ([]Candidate, error) {
	switch t {
	case task.Classification:
		return []Candidate{
			{Name: "Logistic Regression", New: func() Estimator { return NewLogisticRegression(opt.LogisticMaxIter) }},
			{Name: "Decision Tree", New: func() Estimator { return NewDecisionTreeClassifier(opt.TreeMaxDepth) }},
			{Name: "K-Nearest Neighbors", New: func() Estimator { return NewKNeighbors(opt.KNNNeighbors) }},
		}, nil
	case task.Regression:
		return []Candidate{
			{Name: "Linear Regression", New: func() Estimator { return NewLinearRegression() }},
			{Name: "Ridge Regression", New: func() Estimator { return NewRidge(opt.RidgeAlpha) }},
			{Name: "Decision Tree", New: func() Estimator { return NewDecisionTreeRegressor(opt.TreeMaxDepth) }},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", task.ErrInvalidTask, t)
	}
}

// Trainer fits a set of candidates on the same training data.
type Trainer struct {
	Candidates []Candidate
	// Workers bounds concurrent fits; 0 fits all candidates at once.
	Workers int
	Logger  *slog.Logger
}

// NewTrainer returns a trainer for the task's baseline candidates.
func NewTrainer(t task.Type, opt Options) (*Trainer, error) {
	cands, err := Candidates(t, opt)
	if err != nil {
		return nil, err
	}
	return &Trainer{Candidates: cands}, nil
}

// Train fits every candidate and returns the successful ones in candidate
// order. A candidate that fails to fit is logged and skipped; the returned
// slice of TrainErrors lists them. X and y are shared read-only by all fits.
func (tr *Trainer) Train(ctx context.Context, X [][]float64, y []float64) ([]Named, []*TrainError, error) {
	if _, err := checkFit(X, y); err != nil {
		return nil, nil, err
	}
	logger := tr.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fitted := make([]Estimator, len(tr.Candidates))
	failed := make([]error, len(tr.Candidates))

	g, gctx := errgroup.WithContext(ctx)
	if tr.Workers > 0 {
		g.SetLimit(tr.Workers)
	}
	for i, c := range tr.Candidates {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			est := c.New()
			if err := est.Fit(X, y); err != nil {
				failed[i] = err
				logger.Warn("model failed to train", "model", c.Name, "error", err)
				return nil
			}
			fitted[i] = est
			logger.Debug("model trained", "model", c.Name, "rows", len(X), "duration", time.Since(start))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("train: %w", err)
	}

	var out []Named
	var errs []*TrainError
	for i, c := range tr.Candidates {
		if failed[i] != nil {
			errs = append(errs, &TrainError{Name: c.Name, Err: failed[i]})
			continue
		}
		out = append(out, Named{Name: c.Name, Model: fitted[i]})
	}
	if len(out) == 0 {
		if len(errs) == 0 {
			return nil, nil, ErrNoTrainedModels
		}
		joined := make([]error, len(errs))
		for i, e := range errs {
			joined[i] = e
		}
		return nil, errs, fmt.Errorf("%w: %w", ErrNoTrainedModels, errors.Join(joined...))
	}
	return out, errs, nil
}
