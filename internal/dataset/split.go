package dataset

import (
	"fmt"
	"math"
	"math/rand"
)

// DefaultTestSize and DefaultSeed give a reproducible 80/20 split.
const (
	DefaultTestSize = 0.2
	DefaultSeed     = 42
)

// Partition holds a train/test split.
type Partition struct {
	XTrain [][]float64
	XTest  [][]float64
	YTrain []float64
	YTest  []float64
}

// TrainTestSplit shuffles row indices with a seeded source and assigns
// ceil(n*testSize) rows to the test set. With at least two rows both sides
// are non-empty. The same seed always yields the same split.
func TrainTestSplit(X [][]float64, y []float64, testSize float64, seed int64) (*Partition, error) {
	if len(X) != len(y) {
		return nil, fmt.Errorf("split: %d rows, %d targets", len(X), len(y))
	}
	n := len(X)
	if n < 2 {
		return nil, fmt.Errorf("split: need at least 2 rows, have %d", n)
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, fmt.Errorf("split: test size %g must be in (0, 1)", testSize)
	}
	nTest := int(math.Ceil(float64(n) * testSize))
	if nTest < 1 {
		nTest = 1
	}
	if nTest > n-1 {
		nTest = n - 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	p := &Partition{}
	for k, i := range perm {
		if k < nTest {
			p.XTest = append(p.XTest, X[i])
			p.YTest = append(p.YTest, y[i])
		} else {
			p.XTrain = append(p.XTrain, X[i])
			p.YTrain = append(p.YTrain, y[i])
		}
	}
	return p, nil
}
