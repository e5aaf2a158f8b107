package model

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// DefaultNeighbors is the neighbor count used when none is configured.
const DefaultNeighbors = 5

// KNeighbors is a k-nearest-neighbors classifier with Euclidean distance and
// uniform majority voting. Vote ties go to the smallest label.
type KNeighbors struct {
	K int

	X     [][]float64
	y     []float64
	width int
}

// NewKNeighbors returns an unfitted classifier; a non-positive k uses DefaultNeighbors.
func NewKNeighbors(k int) *KNeighbors {
	if k <= 0 {
		k = DefaultNeighbors
	}
	return &KNeighbors{K: k}
}

// Fit memorizes the training set. Rows are referenced, not copied, and must
// not be mutated afterwards.
func (m *KNeighbors) Fit(X [][]float64, y []float64) error {
	width, err := checkFit(X, y)
	if err != nil {
		return err
	}
	m.X, m.y, m.width = X, append([]float64(nil), y...), width
	return nil
}

func (m *KNeighbors) Predict(X [][]float64) ([]float64, error) {
	if m.X == nil {
		return nil, ErrNotFitted
	}
	if err := checkPredict(X, m.width); err != nil {
		return nil, err
	}
	k := m.K
	if k <= 0 {
		k = DefaultNeighbors
	}
	if k > len(m.X) {
		k = len(m.X)
	}
	type neighbor struct {
		dist  float64
		label float64
	}
	nb := make([]neighbor, len(m.X))
	out := make([]float64, len(X))
	for i, row := range X {
		for j, train := range m.X {
			nb[j] = neighbor{dist: floats.Distance(row, train, 2), label: m.y[j]}
		}
		sort.SliceStable(nb, func(a, b int) bool { return nb[a].dist < nb[b].dist })

		votes := make(map[float64]int, k)
		for _, n := range nb[:k] {
			votes[n.label]++
		}
		var winner float64
		best := -1
		for label, c := range votes {
			if c > best || (c == best && label < winner) {
				winner, best = label, c
			}
		}
		out[i] = winner
	}
	return out, nil
}
