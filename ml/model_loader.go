package ml

import (
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultArtifactPath is where the exported model is looked up when no
// configuration overrides it.
const DefaultArtifactPath = "models/tunneling_xgboost_model.json"

const (
	EstimatorXGBoost      = "xgboost"
	EstimatorDecisionTree = "decision_tree"
)

// ArtifactConfig identifies one model artifact. It is the load cache key.
type ArtifactConfig struct {
	Path string
}

type artifact struct {
	Estimator    string          `json:"estimator"`
	FeatureNames []string        `json:"feature_names"`
	Classes      []string        `json:"classes"`
	Model        json.RawMessage `json:"model"`
}

// LoadArtifact reads an (estimator, label decoder) pair from path. Every
// failure is wrapped in ErrModelUnavailable.
func LoadArtifact(path string) (*Model, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	model, err := decodeArtifact(path, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrModelUnavailable, path, err)
	}
	return model, nil
}

func decodeArtifact(path string, payload []byte) (*Model, error) {
	var a artifact
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if len(a.FeatureNames) > 0 && !sameNames(a.FeatureNames, FeatureNames()) {
		return nil, fmt.Errorf("artifact feature names %v do not match %v", a.FeatureNames, FeatureNames())
	}
	if len(a.Model) == 0 {
		return nil, fmt.Errorf("artifact has no model")
	}
	decoder, err := NewLabelDecoder(a.Classes)
	if err != nil {
		return nil, err
	}

	var estimator Estimator
	switch a.Estimator {
	case EstimatorXGBoost, "":
		gbt, err := parseGradientBoostedTrees(a.Model)
		if err != nil {
			return nil, err
		}
		estimator = gbt
		a.Estimator = EstimatorXGBoost
	case EstimatorDecisionTree:
		dt, err := parseDecisionTree(a.Model, decoder.Len())
		if err != nil {
			return nil, err
		}
		estimator = dt
	default:
		return nil, fmt.Errorf("unsupported estimator %q", a.Estimator)
	}
	return newModel(a.Estimator, path, estimator, decoder)
}

// Loader memoizes artifact loads so each artifact is read once per process.
type Loader struct {
	mu    sync.Mutex
	cache *lru.Cache[ArtifactConfig, *Model]
}

func NewLoader(size int) (*Loader, error) {
	if size <= 0 {
		size = 1
	}
	cache, err := lru.New[ArtifactConfig, *Model](size)
	if err != nil {
		return nil, err
	}
	return &Loader{cache: cache}, nil
}

// Load returns the cached model for cfg, reading the artifact on first use.
// Failed loads are not cached.
func (l *Loader) Load(cfg ArtifactConfig) (*Model, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if model, ok := l.cache.Get(cfg); ok {
		return model, nil
	}
	model, err := LoadArtifact(cfg.Path)
	if err != nil {
		return nil, err
	}
	l.cache.Add(cfg, model)
	return model, nil
}
