package artifact

import (
	"encoding/json"
	"fmt"
)

// Regressor produces a point prediction for one scaled row.
type Regressor interface {
	NumFeatures() int
	Predict(row []float64) float64
}

const (
	ModelRandomForest = "random_forest"
	ModelDecisionTree = "decision_tree"
	ModelLinear       = "linear"
)

const leaf = -1

type modelFile struct {
	Type      string     `json:"type"`
	Features  int        `json:"n_features"`
	Trees     []treeFile `json:"trees"`
	Coef      []float64  `json:"coef"`
	Intercept float64    `json:"intercept"`
}

type treeFile struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

// Tree is a binary regression tree stored as parallel node arrays.
// Node 0 is the root.
type Tree struct {
	left      []int
	right     []int
	feature   []int
	threshold []float64
	value     []float64
}

func (t *Tree) predict(row []float64) float64 {
	n := 0
	for t.left[n] != leaf {
		if row[t.feature[n]] <= t.threshold[n] {
			n = t.left[n]
		} else {
			n = t.right[n]
		}
	}
	return t.value[n]
}

// Forest averages its trees. A single tree is a forest of one.
type Forest struct {
	features int
	trees    []*Tree
}

func (f *Forest) NumFeatures() int { return f.features }

func (f *Forest) Predict(row []float64) float64 {
	var sum float64
	for _, t := range f.trees {
		sum += t.predict(row)
	}
	return sum / float64(len(f.trees))
}

// Linear is an ordinary least squares model.
type Linear struct {
	Coef      []float64
	Intercept float64
}

func (l *Linear) NumFeatures() int { return len(l.Coef) }

func (l *Linear) Predict(row []float64) float64 {
	y := l.Intercept
	for i, c := range l.Coef {
		y += c * row[i]
	}
	return y
}

// DecodeModel parses a model document.
func DecodeModel(data []byte) (Regressor, error) {
	var f modelFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	switch f.Type {
	case ModelRandomForest, ModelDecisionTree:
		if f.Features <= 0 {
			return nil, fmt.Errorf("%s: n_features must be positive", f.Type)
		}
		if len(f.Trees) == 0 {
			return nil, fmt.Errorf("%s: no trees", f.Type)
		}
		if f.Type == ModelDecisionTree && len(f.Trees) != 1 {
			return nil, fmt.Errorf("decision_tree: want 1 tree, got %d", len(f.Trees))
		}
		forest := &Forest{features: f.Features, trees: make([]*Tree, 0, len(f.Trees))}
		for i, tf := range f.Trees {
			t, err := buildTree(tf, f.Features)
			if err != nil {
				return nil, fmt.Errorf("tree %d: %w", i, err)
			}
			forest.trees = append(forest.trees, t)
		}
		return forest, nil
	case ModelLinear:
		if len(f.Coef) == 0 {
			return nil, fmt.Errorf("linear: no coefficients")
		}
		if f.Features != 0 && f.Features != len(f.Coef) {
			return nil, fmt.Errorf("linear: n_features=%d but %d coefficients", f.Features, len(f.Coef))
		}
		return &Linear{Coef: f.Coef, Intercept: f.Intercept}, nil
	default:
		return nil, fmt.Errorf("unknown model type %q", f.Type)
	}
}

// buildTree checks the node arrays so that traversal can never index out of
// range or loop.
func buildTree(tf treeFile, features int) (*Tree, error) {
	n := len(tf.ChildrenLeft)
	if n == 0 {
		return nil, fmt.Errorf("empty tree")
	}
	if len(tf.ChildrenRight) != n || len(tf.Feature) != n || len(tf.Threshold) != n || len(tf.Value) != n {
		return nil, fmt.Errorf("node arrays differ in length")
	}
	for i := 0; i < n; i++ {
		l, r := tf.ChildrenLeft[i], tf.ChildrenRight[i]
		if l == leaf {
			if r != leaf {
				return nil, fmt.Errorf("node %d: half leaf", i)
			}
			continue
		}
		// children always follow their parent in depth-first order
		if l <= i || l >= n || r <= i || r >= n {
			return nil, fmt.Errorf("node %d: child out of range", i)
		}
		if f := tf.Feature[i]; f < 0 || f >= features {
			return nil, fmt.Errorf("node %d: feature %d out of range", i, f)
		}
	}
	return &Tree{
		left:      tf.ChildrenLeft,
		right:     tf.ChildrenRight,
		feature:   tf.Feature,
		threshold: tf.Threshold,
		value:     tf.Value,
	}, nil
}
