package model

import (
	"sort"
)

// minImpurityDecrease is the smallest weighted impurity gain worth a split.
const minImpurityDecrease = 1e-12

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

// DecisionTree is a CART tree. With Classifier set it splits on Gini impurity
// and predicts the majority label; otherwise it splits on variance and
// predicts the leaf mean.
type DecisionTree struct {
	Classifier bool
	// MaxDepth of 0 grows until leaves are pure or too small to split.
	MaxDepth        int
	MinSamplesSplit int

	root    *treeNode
	width   int
	classes []float64
	index   map[float64]int
}

// NewDecisionTreeClassifier returns an unfitted Gini tree.
func NewDecisionTreeClassifier(maxDepth int) *DecisionTree {
	return &DecisionTree{Classifier: true, MaxDepth: maxDepth, MinSamplesSplit: 2}
}

// NewDecisionTreeRegressor returns an unfitted variance-reduction tree.
func NewDecisionTreeRegressor(maxDepth int) *DecisionTree {
	return &DecisionTree{MaxDepth: maxDepth, MinSamplesSplit: 2}
}

// Depth returns the depth of the fitted tree; a single leaf has depth 0.
func (t *DecisionTree) Depth() int { return depth(t.root) }

func depth(n *treeNode) int {
	if n == nil || n.leaf {
		return 0
	}
	return 1 + max(depth(n.left), depth(n.right))
}

func (t *DecisionTree) Fit(X [][]float64, y []float64) error {
	width, err := checkFit(X, y)
	if err != nil {
		return err
	}
	t.width = width
	if t.Classifier {
		t.classes = distinctSorted(y)
		t.index = make(map[float64]int, len(t.classes))
		for i, c := range t.classes {
			t.index[c] = i
		}
	}
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	t.root = t.build(X, y, idx, 0)
	return nil
}

func (t *DecisionTree) Predict(X [][]float64) ([]float64, error) {
	if t.root == nil {
		return nil, ErrNotFitted
	}
	if err := checkPredict(X, t.width); err != nil {
		return nil, err
	}
	out := make([]float64, len(X))
	for i, row := range X {
		n := t.root
		for !n.leaf {
			if row[n.feature] <= n.threshold {
				n = n.left
			} else {
				n = n.right
			}
		}
		out[i] = n.value
	}
	return out, nil
}

func (t *DecisionTree) build(X [][]float64, y []float64, idx []int, d int) *treeNode {
	leaf := &treeNode{leaf: true, value: t.leafValue(y, idx)}
	minSplit := t.MinSamplesSplit
	if minSplit < 2 {
		minSplit = 2
	}
	if len(idx) < minSplit || (t.MaxDepth > 0 && d >= t.MaxDepth) {
		return leaf
	}
	parent := t.impurity(y, idx)
	if parent <= minImpurityDecrease {
		return leaf
	}
	feature, threshold, score, ok := t.bestSplit(X, y, idx)
	if !ok || parent-score <= minImpurityDecrease {
		return leaf
	}
	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return leaf
	}
	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      t.build(X, y, left, d+1),
		right:     t.build(X, y, right, d+1),
	}
}

// impurity returns the node's total (count-weighted) impurity.
func (t *DecisionTree) impurity(y []float64, idx []int) float64 {
	n := float64(len(idx))
	if t.Classifier {
		counts := make([]float64, len(t.classes))
		for _, i := range idx {
			counts[t.index[y[i]]]++
		}
		sq := 0.0
		for _, c := range counts {
			sq += c * c
		}
		return n - sq/n
	}
	var sum, sumSq float64
	for _, i := range idx {
		sum += y[i]
		sumSq += y[i] * y[i]
	}
	return sumSq - sum*sum/n
}

// bestSplit sweeps every feature in sorted order and returns the threshold
// that minimizes the summed child impurity.
func (t *DecisionTree) bestSplit(X [][]float64, y []float64, idx []int) (int, float64, float64, bool) {
	n := len(idx)
	order := make([]int, n)
	bestScore := 0.0
	bestFeature, bestThreshold := -1, 0.0

	for f := 0; f < t.width; f++ {
		copy(order, idx)
		sort.SliceStable(order, func(a, b int) bool { return X[order[a]][f] < X[order[b]][f] })

		s := t.newSweep(y, order)
		for k := 0; k < n-1; k++ {
			s.move(y[order[k]])
			lo, hi := X[order[k]][f], X[order[k+1]][f]
			if lo == hi {
				continue
			}
			score := s.score(k+1, n-k-1)
			if bestFeature < 0 || score < bestScore {
				bestFeature, bestScore = f, score
				bestThreshold = lo + (hi-lo)/2
				// Adjacent floats round the midpoint up to hi.
				if bestThreshold >= hi {
					bestThreshold = lo
				}
			}
		}
	}
	return bestFeature, bestThreshold, bestScore, bestFeature >= 0
}

// sweep tracks left/right statistics while samples move from right to left.
type sweep struct {
	classifier bool
	index      map[float64]int
	// classification: class counts and running sums of squared counts
	left, right     []float64
	leftSq, rightSq float64
	// regression: running sums
	lSum, lSq, rSum, rSq float64
}

func (t *DecisionTree) newSweep(y []float64, order []int) *sweep {
	s := &sweep{classifier: t.Classifier, index: t.index}
	if t.Classifier {
		s.left = make([]float64, len(t.classes))
		s.right = make([]float64, len(t.classes))
		for _, i := range order {
			s.right[t.index[y[i]]]++
		}
		for _, c := range s.right {
			s.rightSq += c * c
		}
		return s
	}
	for _, i := range order {
		s.rSum += y[i]
		s.rSq += y[i] * y[i]
	}
	return s
}

func (s *sweep) move(v float64) {
	if s.classifier {
		k := s.index[v]
		s.leftSq += 2*s.left[k] + 1
		s.rightSq -= 2*s.right[k] - 1
		s.left[k]++
		s.right[k]--
		return
	}
	s.lSum += v
	s.lSq += v * v
	s.rSum -= v
	s.rSq -= v * v
}

func (s *sweep) score(nl, nr int) float64 {
	l, r := float64(nl), float64(nr)
	if s.classifier {
		return (l - s.leftSq/l) + (r - s.rightSq/r)
	}
	return (s.lSq - s.lSum*s.lSum/l) + (s.rSq - s.rSum*s.rSum/r)
}

func (t *DecisionTree) leafValue(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	if !t.Classifier {
		sum := 0.0
		for _, i := range idx {
			sum += y[i]
		}
		return sum / float64(len(idx))
	}
	counts := make([]int, len(t.classes))
	for _, i := range idx {
		counts[t.index[y[i]]]++
	}
	// classes are sorted, so the first maximum is the smallest label
	best := 0
	for k, c := range counts {
		if c > counts[best] {
			best = k
		}
	}
	return t.classes[best]
}
