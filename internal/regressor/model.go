// Package regressor loads and evaluates the per-symbol next-close models.
package regressor

import (
	"fmt"
	"time"

	"IDXForecast/internal/model"
)

// Model maps one feature row to a predicted next close.
type Model interface {
	Predict(row model.FeatureRow) float64
}

// PredictAll evaluates m over rows in order.
func PredictAll(m Model, rows []model.FeatureRow) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = m.Predict(r)
	}
	return out
}

const (
	KindLinear = "linear"
	KindForest = "forest"
)

// Artifact is the on-disk form of a fitted model.
type Artifact struct {
	Symbol       string    `json:"symbol"`
	Kind         string    `json:"kind"`
	Features     []string  `json:"features,omitempty"`
	Intercept    float64   `json:"intercept,omitempty"`
	Coefficients []float64 `json:"coefficients,omitempty"`
	Trees        []Tree    `json:"trees,omitempty"`
	TrainedAt    time.Time `json:"trained_at,omitempty"`
	Samples      int       `json:"samples,omitempty"`
}

// Tree is a regression tree in flat node-array form. Node 0 is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is a split when Left and Right point at children, a leaf otherwise.
// Leaves may also be marked with Left == -1 as exported by scikit-learn.
type Node struct {
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Value     float64 `json:"value,omitempty"`
}

func (n Node) isLeaf() bool {
	return n.Left <= 0 || n.Right <= 0
}

// LinearModel is intercept + coefficients · features.
type LinearModel struct {
	Intercept    float64
	Coefficients []float64
}

func (m *LinearModel) Predict(row model.FeatureRow) float64 {
	y := m.Intercept
	for i, x := range row.Vector() {
		y += m.Coefficients[i] * x
	}
	return y
}

// ForestModel averages the outputs of its trees.
type ForestModel struct {
	Trees []Tree
}

func (m *ForestModel) Predict(row model.FeatureRow) float64 {
	x := row.Vector()
	sum := 0.0
	for _, t := range m.Trees {
		sum += t.eval(x)
	}
	return sum / float64(len(m.Trees))
}

func (t Tree) eval(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.isLeaf() {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Build validates the artifact and returns an evaluable Model.
func (a *Artifact) Build() (Model, error) {
	nf := len(model.FeatureNames)
	switch a.Kind {
	case KindLinear:
		if len(a.Coefficients) != nf {
			return nil, fmt.Errorf("linear model has %d coefficients, want %d: %w", len(a.Coefficients), nf, model.ErrInvalidModel)
		}
		return &LinearModel{Intercept: a.Intercept, Coefficients: a.Coefficients}, nil
	case KindForest:
		if len(a.Trees) == 0 {
			return nil, fmt.Errorf("forest has no trees: %w", model.ErrInvalidModel)
		}
		for ti, t := range a.Trees {
			if err := t.validate(nf); err != nil {
				return nil, fmt.Errorf("tree %d: %w", ti, err)
			}
		}
		return &ForestModel{Trees: a.Trees}, nil
	default:
		return nil, fmt.Errorf("unknown model kind %q: %w", a.Kind, model.ErrInvalidModel)
	}
}

// validate rejects empty trees, half-split nodes, dangling child indexes and
// back edges, so that
// eval always terminates.
func (t Tree) validate(numFeatures int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("empty tree: %w", model.ErrInvalidModel)
	}
	for i, n := range t.Nodes {
		if (n.Left > 0) != (n.Right > 0) {
			return fmt.Errorf("node %d has one child %d/%d: %w", i, n.Left, n.Right, model.ErrInvalidModel)
		}
		if n.isLeaf() {
			continue
		}
		if n.Left <= i || n.Right <= i || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has invalid children %d/%d: %w", i, n.Left, n.Right, model.ErrInvalidModel)
		}
		if n.Feature < 0 || n.Feature >= numFeatures {
			return fmt.Errorf("node %d splits on feature %d: %w", i, n.Feature, model.ErrInvalidModel)
		}
	}
	return nil
}
