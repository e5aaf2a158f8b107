package model

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DefaultRidgeAlpha matches the usual L2 strength for a baseline ridge model.
const DefaultRidgeAlpha = 1.0

// rankTolerance is the relative singular-value cutoff used by least squares.
const rankTolerance = 1e-10

// linear holds fitted coefficients shared by the least-squares models.
type linear struct {
	coef      []float64
	intercept float64
	fitted    bool
}

// Coefficients returns a copy of the fitted weights.
func (l *linear) Coefficients() []float64 { return append([]float64(nil), l.coef...) }

// Intercept returns the fitted bias term.
func (l *linear) Intercept() float64 { return l.intercept }

// Predict returns X·w + b for every row.
func (l *linear) Predict(X [][]float64) ([]float64, error) {
	if !l.fitted {
		return nil, ErrNotFitted
	}
	if err := checkPredict(X, len(l.coef)); err != nil {
		return nil, err
	}
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = l.intercept
		if len(row) > 0 {
			out[i] += floats.Dot(row, l.coef)
		}
	}
	return out, nil
}

// LinearRegression is ordinary least squares with an intercept. Rank-deficient
// designs (one-hot columns, constant features) are solved via SVD with the
// minimum-norm solution.
type LinearRegression struct {
	linear
}

// NewLinearRegression returns an unfitted OLS model.
func NewLinearRegression() *LinearRegression { return &LinearRegression{} }

// Fit solves min ||Xc·w - yc|| on mean-centered data.
func (m *LinearRegression) Fit(X [][]float64, y []float64) error {
	xc, yc, xMean, yMean, err := center(X, y)
	if err != nil {
		return err
	}
	if xc == nil {
		m.coef, m.intercept, m.fitted = []float64{}, yMean, true
		return nil
	}
	var svd mat.SVD
	if ok := svd.Factorize(xc, mat.SVDThin); !ok {
		return errors.New("linear regression: SVD factorization failed")
	}
	rank := svd.Rank(rankTolerance)
	if rank == 0 {
		m.coef, m.intercept, m.fitted = make([]float64, len(xMean)), yMean, true
		return nil
	}
	var w mat.VecDense
	svd.SolveVecTo(&w, mat.NewVecDense(len(yc), yc), rank)
	m.setCoef(w.RawVector().Data, xMean, yMean)
	return nil
}

// Ridge is L2-regularized least squares. The intercept is not penalized.
type Ridge struct {
	Alpha float64
	linear
}

// NewRidge returns an unfitted ridge model; a non-positive alpha uses DefaultRidgeAlpha.
func NewRidge(alpha float64) *Ridge {
	if alpha <= 0 {
		alpha = DefaultRidgeAlpha
	}
	return &Ridge{Alpha: alpha}
}

// Fit solves (XcᵀXc + αI)·w = Xcᵀyc with a Cholesky factorization.
func (m *Ridge) Fit(X [][]float64, y []float64) error {
	alpha := m.Alpha
	if alpha <= 0 {
		alpha = DefaultRidgeAlpha
	}
	xc, yc, xMean, yMean, err := center(X, y)
	if err != nil {
		return err
	}
	if xc == nil {
		m.coef, m.intercept, m.fitted = []float64{}, yMean, true
		return nil
	}
	d := len(xMean)
	gram := mat.NewSymDense(d, nil)
	gram.SymOuterK(1, xc.T())
	for i := 0; i < d; i++ {
		gram.SetSym(i, i, gram.At(i, i)+alpha)
	}
	var rhs mat.VecDense
	rhs.MulVec(xc.T(), mat.NewVecDense(len(yc), yc))

	var chol mat.Cholesky
	if ok := chol.Factorize(gram); !ok {
		return fmt.Errorf("ridge: gram matrix is not positive definite (alpha=%g)", alpha)
	}
	var w mat.VecDense
	if err := chol.SolveVecTo(&w, &rhs); err != nil {
		return fmt.Errorf("ridge: solve: %w", err)
	}
	m.setCoef(w.RawVector().Data, xMean, yMean)
	return nil
}

func (l *linear) setCoef(w, xMean []float64, yMean float64) {
	l.coef = append([]float64(nil), w...)
	l.intercept = yMean - floats.Dot(l.coef, xMean)
	l.fitted = true
}

// center returns the mean-centered design matrix and target. A nil matrix
// means the data has no feature columns.
func center(X [][]float64, y []float64) (*mat.Dense, []float64, []float64, float64, error) {
	width, err := checkFit(X, y)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	yMean := stat.Mean(y, nil)
	yc := make([]float64, len(y))
	for i, v := range y {
		yc[i] = v - yMean
	}
	if width == 0 {
		return nil, yc, nil, yMean, nil
	}
	n := len(X)
	xMean := make([]float64, width)
	col := make([]float64, n)
	for j := 0; j < width; j++ {
		for i := range X {
			col[i] = X[i][j]
		}
		xMean[j] = stat.Mean(col, nil)
	}
	xc := mat.NewDense(n, width, nil)
	for i, row := range X {
		for j, v := range row {
			xc.Set(i, j, v-xMean[j])
		}
	}
	return xc, yc, xMean, yMean, nil
}
