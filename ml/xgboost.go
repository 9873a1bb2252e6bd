package ml

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// GradientBoostedTrees evaluates an ensemble exported with XGBoost's
// save_model JSON schema.
type GradientBoostedTrees struct {
	trees      []regressionTree
	treeInfo   []int
	numClass   int
	numFeature int
	baseScore  []float64
	binary     bool
	objective  string
}

type regressionTree struct {
	left        []int
	right       []int
	splitIndex  []int
	splitCond   []float64
	defaultLeft []bool
}

type xgbDocument struct {
	Learner struct {
		FeatureNames []string `json:"feature_names"`
		LearnerParam struct {
			BaseScore  string `json:"base_score"`
			NumClass   string `json:"num_class"`
			NumFeature string `json:"num_feature"`
		} `json:"learner_model_param"`
		GradientBooster struct {
			Name  string `json:"name"`
			Model struct {
				Trees    []xgbTree `json:"trees"`
				TreeInfo []int     `json:"tree_info"`
			} `json:"model"`
		} `json:"gradient_booster"`
		Objective struct {
			Name string `json:"name"`
		} `json:"objective"`
	} `json:"learner"`
}

type xgbTree struct {
	LeftChildren    []int     `json:"left_children"`
	RightChildren   []int     `json:"right_children"`
	SplitIndices    []int     `json:"split_indices"`
	SplitConditions []float64 `json:"split_conditions"`
	DefaultLeft     []flag    `json:"default_left"`
}

// flag accepts both the boolean and the 0/1 encodings XGBoost versions use
// for default_left.
type flag bool

func (f *flag) UnmarshalJSON(data []byte) error {
	switch strings.TrimSpace(string(data)) {
	case "true", "1":
		*f = true
	case "false", "0":
		*f = false
	default:
		return fmt.Errorf("invalid default_left value %s", data)
	}
	return nil
}

func parseGradientBoostedTrees(payload []byte) (*GradientBoostedTrees, error) {
	var doc xgbDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("decode xgboost model: %w", err)
	}
	learner := doc.Learner
	if name := learner.GradientBooster.Name; name != "" && name != "gbtree" {
		return nil, fmt.Errorf("unsupported booster %q", name)
	}

	numFeature, err := parseParam(learner.LearnerParam.NumFeature)
	if err != nil {
		return nil, fmt.Errorf("num_feature: %w", err)
	}
	numClass, err := parseParam(learner.LearnerParam.NumClass)
	if err != nil {
		return nil, fmt.Errorf("num_class: %w", err)
	}
	baseScores, err := parseBaseScore(learner.LearnerParam.BaseScore)
	if err != nil {
		return nil, fmt.Errorf("base_score: %w", err)
	}
	if len(learner.FeatureNames) > 0 && !sameNames(learner.FeatureNames, FeatureNames()) {
		return nil, fmt.Errorf("model feature names %v do not match %v", learner.FeatureNames, FeatureNames())
	}

	raw := learner.GradientBooster.Model
	if len(raw.Trees) == 0 {
		return nil, errors.New("model has no trees")
	}
	if len(raw.TreeInfo) != len(raw.Trees) {
		return nil, fmt.Errorf("tree_info has %d entries for %d trees", len(raw.TreeInfo), len(raw.Trees))
	}

	m := &GradientBoostedTrees{
		treeInfo:   append([]int(nil), raw.TreeInfo...),
		numFeature: int(numFeature),
		objective:  learner.Objective.Name,
	}
	if numClass <= 1 {
		m.binary = true
		m.numClass = 2
	} else {
		m.numClass = int(numClass)
	}

	groups := m.numClass
	if m.binary {
		groups = 1
	}
	switch len(baseScores) {
	case 1:
		m.baseScore = make([]float64, groups)
		for i := range m.baseScore {
			m.baseScore[i] = baseScores[0]
		}
	case groups:
		m.baseScore = baseScores
	default:
		return nil, fmt.Errorf("base_score has %d values for %d output groups", len(baseScores), groups)
	}
	if m.binary {
		m.baseScore[0] = logit(m.baseScore[0])
	}
	for i, t := range raw.Trees {
		if m.treeInfo[i] < 0 || m.treeInfo[i] >= groups {
			return nil, fmt.Errorf("tree %d: output group %d out of range", i, m.treeInfo[i])
		}
		tree, err := newRegressionTree(t, m.numFeature)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		m.trees = append(m.trees, tree)
	}
	return m, nil
}

func newRegressionTree(t xgbTree, numFeature int) (regressionTree, error) {
	n := len(t.LeftChildren)
	if n == 0 {
		return regressionTree{}, errors.New("empty tree")
	}
	if len(t.RightChildren) != n || len(t.SplitIndices) != n || len(t.SplitConditions) != n {
		return regressionTree{}, errors.New("node arrays have different lengths")
	}
	defaultLeft := make([]bool, n)
	if len(t.DefaultLeft) != 0 && len(t.DefaultLeft) != n {
		return regressionTree{}, errors.New("default_left length mismatch")
	}
	for i, v := range t.DefaultLeft {
		defaultLeft[i] = bool(v)
	}
	for i := 0; i < n; i++ {
		if t.LeftChildren[i] == -1 {
			continue
		}
		if t.LeftChildren[i] <= i || t.LeftChildren[i] >= n || t.RightChildren[i] <= i || t.RightChildren[i] >= n {
			return regressionTree{}, fmt.Errorf("node %d has invalid children", i)
		}
		if t.SplitIndices[i] < 0 || t.SplitIndices[i] >= numFeature {
			return regressionTree{}, fmt.Errorf("node %d splits on feature %d", i, t.SplitIndices[i])
		}
	}
	return regressionTree{
		left:        t.LeftChildren,
		right:       t.RightChildren,
		splitIndex:  t.SplitIndices,
		splitCond:   t.SplitConditions,
		defaultLeft: defaultLeft,
	}, nil
}

func (t regressionTree) leaf(features []float64) float64 {
	idx := 0
	for t.left[idx] != -1 {
		v := features[t.splitIndex[idx]]
		switch {
		case math.IsNaN(v):
			if t.defaultLeft[idx] {
				idx = t.left[idx]
			} else {
				idx = t.right[idx]
			}
		case v < t.splitCond[idx]:
			idx = t.left[idx]
		default:
			idx = t.right[idx]
		}
	}
	return t.splitCond[idx]
}

// Margins returns the raw per-class scores before the link function.
func (m *GradientBoostedTrees) Margins(features []float64) ([]float64, error) {
	if len(features) != m.numFeature {
		return nil, fmt.Errorf("%w: got %d features, model expects %d", ErrInvalidInput, len(features), m.numFeature)
	}
	margins := append([]float64(nil), m.baseScore...)
	for i, tree := range m.trees {
		margins[m.treeInfo[i]] += tree.leaf(features)
	}
	return margins, nil
}

func (m *GradientBoostedTrees) Predict(features []float64) (int, error) {
	margins, err := m.Margins(features)
	if err != nil {
		return 0, err
	}
	if m.binary {
		if margins[0] > 0 {
			return 1, nil
		}
		return 0, nil
	}
	best := 0
	for i := 1; i < len(margins); i++ {
		if margins[i] > margins[best] {
			best = i
		}
	}
	return best, nil
}

func (m *GradientBoostedTrees) NumFeatures() int { return m.numFeature }

func (m *GradientBoostedTrees) NumClasses() int { return m.numClass }

func (m *GradientBoostedTrees) NumTrees() int { return len(m.trees) }

func (m *GradientBoostedTrees) Objective() string { return m.objective }

func parseParam(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

// parseBaseScore accepts the scalar "5E-1" of XGBoost 1.x/2.x and the
// bracketed vector "[5E-1,5E-1,5E-1]" of 3.x, one entry per output group.
func parseBaseScore(s string) ([]float64, error) {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	if strings.TrimSpace(s) == "" {
		return []float64{0.5}, nil
	}
	fields := strings.Split(s, ",")
	scores := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, err
		}
		scores[i] = v
	}
	return scores, nil
}

func logit(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	return math.Log(p / (1 - p))
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
