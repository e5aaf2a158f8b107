package model

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultLogisticMaxIter bounds gradient-descent epochs.
	DefaultLogisticMaxIter = 300
	logisticLearningRate   = 0.5
	// logisticC is the inverse regularization strength.
	logisticC = 1.0
)

// LogisticRegression is an L2-regularized logistic classifier trained with
// batch gradient descent. More than two classes are handled one-vs-rest.
// Predictions are class labels from the training targets.
type LogisticRegression struct {
	MaxIter int

	classes []float64
	// one weight vector per binary problem; the last element is the bias
	weights [][]float64
	width   int
	fitted  bool
}

// NewLogisticRegression returns an unfitted classifier.
func NewLogisticRegression(maxIter int) *LogisticRegression {
	if maxIter <= 0 {
		maxIter = DefaultLogisticMaxIter
	}
	return &LogisticRegression{MaxIter: maxIter}
}

// Classes returns the sorted labels seen during Fit.
func (m *LogisticRegression) Classes() []float64 { return append([]float64(nil), m.classes...) }

func (m *LogisticRegression) Fit(X [][]float64, y []float64) error {
	width, err := checkFit(X, y)
	if err != nil {
		return err
	}
	m.width = width
	m.classes = distinctSorted(y)
	m.weights = nil
	switch len(m.classes) {
	case 1:
		// nothing to separate; Predict returns the only class
	case 2:
		m.weights = [][]float64{m.fitBinary(X, y, m.classes[1])}
	default:
		for _, c := range m.classes {
			m.weights = append(m.weights, m.fitBinary(X, y, c))
		}
	}
	m.fitted = true
	return nil
}

func (m *LogisticRegression) fitBinary(X [][]float64, y []float64, positive float64) []float64 {
	maxIter := m.MaxIter
	if maxIter <= 0 {
		maxIter = DefaultLogisticMaxIter
	}
	n := float64(len(X))
	lambda := 1 / (logisticC * n)
	w := make([]float64, m.width+1)
	grad := make([]float64, m.width+1)
	for iter := 0; iter < maxIter; iter++ {
		for k := range grad {
			grad[k] = 0
		}
		for i, row := range X {
			target := 0.0
			if y[i] == positive {
				target = 1
			}
			diff := sigmoid(m.decision(w, row)) - target
			for j, v := range row {
				grad[j] += diff * v
			}
			grad[m.width] += diff
		}
		for j := 0; j < m.width; j++ {
			grad[j] = grad[j]/n + lambda*w[j]
		}
		grad[m.width] /= n
		floats.AddScaled(w, -logisticLearningRate, grad)
	}
	return w
}

func (m *LogisticRegression) decision(w, row []float64) float64 {
	z := w[m.width]
	if m.width > 0 {
		z += floats.Dot(w[:m.width], row)
	}
	return z
}

func (m *LogisticRegression) Predict(X [][]float64) ([]float64, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	if err := checkPredict(X, m.width); err != nil {
		return nil, err
	}
	out := make([]float64, len(X))
	for i, row := range X {
		switch len(m.weights) {
		case 0:
			out[i] = m.classes[0]
		case 1:
			if sigmoid(m.decision(m.weights[0], row)) >= 0.5 {
				out[i] = m.classes[1]
			} else {
				out[i] = m.classes[0]
			}
		default:
			best, bestZ := 0, math.Inf(-1)
			for k, w := range m.weights {
				if z := m.decision(w, row); z > bestZ {
					best, bestZ = k, z
				}
			}
			out[i] = m.classes[best]
		}
	}
	return out, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func distinctSorted(y []float64) []float64 {
	seen := make(map[float64]struct{}, len(y))
	var out []float64
	for _, v := range y {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}
