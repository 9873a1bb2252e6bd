package ml

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// DecisionTree is a single CART tree stored as a flat node list, root first.
type DecisionTree struct {
	nodes      []TreeNode
	numClasses int
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	IsLeaf     bool    `json:"is_leaf"`
}

func parseDecisionTree(payload []byte, numClasses int) (*DecisionTree, error) {
	var nodes []TreeNode
	if err := json.Unmarshal(payload, &nodes); err != nil {
		return nil, fmt.Errorf("decode decision tree: %w", err)
	}
	if len(nodes) == 0 {
		return nil, errors.New("model not trained")
	}
	for i, node := range nodes {
		if node.IsLeaf {
			if node.ClassLabel < 0 || node.ClassLabel >= numClasses {
				return nil, fmt.Errorf("node %d: class label %d out of range", i, node.ClassLabel)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(parameters) {
			return nil, fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		if node.LeftChild <= i || node.LeftChild >= len(nodes) || node.RightChild <= i || node.RightChild >= len(nodes) {
			return nil, fmt.Errorf("node %d: invalid tree state", i)
		}
	}
	return &DecisionTree{nodes: nodes, numClasses: numClasses}, nil
}

func (dt *DecisionTree) Predict(features []float64) (int, error) {
	if len(features) != len(parameters) {
		return 0, fmt.Errorf("%w: got %d features, model expects %d", ErrInvalidInput, len(features), len(parameters))
	}
	idx := 0
	for {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, nil
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
}

func (dt *DecisionTree) NumFeatures() int { return len(parameters) }

func (dt *DecisionTree) NumClasses() int { return dt.numClasses }
