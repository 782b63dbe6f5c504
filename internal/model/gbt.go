package model

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/blood-eligibility-server/internal/domain"
)

// treeNode is one node of a serialized decision tree. A node is either a
// leaf (Leaf set) or an internal split: numeric splits carry Threshold
// (value < threshold goes left), categorical splits carry Category (value
// == category goes left).
type treeNode struct {
	Feature   string    `json:"feature,omitempty"`
	Threshold *float64  `json:"threshold,omitempty"`
	Category  *string   `json:"category,omitempty"`
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
	Leaf      *float64  `json:"leaf,omitempty"`
}

// boostedTrees is the on-disk gradient-boosting format: a base score plus
// additive trees. The summed score is squashed through a sigmoid into the
// eligible-class probability.
type boostedTrees struct {
	BaseScore float64     `json:"base_score"`
	Trees     []*treeNode `json:"trees"`
}

// parseBoostedTrees decodes and structurally validates an artifact payload.
func parseBoostedTrees(payload []byte) (*boostedTrees, error) {
	var bt boostedTrees
	if err := json.Unmarshal(payload, &bt); err != nil {
		return nil, fmt.Errorf("decoding artifact: %w", err)
	}
	if len(bt.Trees) == 0 {
		return nil, fmt.Errorf("artifact contains no trees")
	}
	for i, tree := range bt.Trees {
		if err := validateNode(tree); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return &bt, nil
}

func validateNode(n *treeNode) error {
	if n == nil {
		return fmt.Errorf("nil node")
	}
	if n.Leaf != nil {
		return nil
	}
	if n.Feature == "" {
		return fmt.Errorf("split node missing feature name")
	}
	if n.Threshold == nil && n.Category == nil {
		return fmt.Errorf("split node %q has neither threshold nor category", n.Feature)
	}
	if n.Left == nil || n.Right == nil {
		return fmt.Errorf("split node %q missing a branch", n.Feature)
	}
	if err := validateNode(n.Left); err != nil {
		return err
	}
	return validateNode(n.Right)
}

// score sums the tree outputs for a feature vector.
func (bt *boostedTrees) score(vector domain.FeatureVector) (float64, error) {
	total := bt.BaseScore
	for i, tree := range bt.Trees {
		leaf, err := evalTree(tree, vector)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		total += leaf
	}
	return total, nil
}

func evalTree(n *treeNode, vector domain.FeatureVector) (float64, error) {
	for n.Leaf == nil {
		goLeft, err := evalSplit(n, vector)
		if err != nil {
			return 0, err
		}
		if goLeft {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return *n.Leaf, nil
}

func evalSplit(n *treeNode, vector domain.FeatureVector) (bool, error) {
	if n.Threshold != nil {
		num, ok := vector.Number(n.Feature)
		if !ok {
			return false, fmt.Errorf("numeric feature %q missing from vector", n.Feature)
		}
		return num < *n.Threshold, nil
	}

	str, ok := vector.String(n.Feature)
	if !ok {
		return false, fmt.Errorf("categorical feature %q missing from vector", n.Feature)
	}
	return str == *n.Category, nil
}

// sigmoid maps a raw boosting score to the eligible-class probability.
func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
