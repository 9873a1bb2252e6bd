package ml

import "fmt"

// Estimator is a trained classifier that maps a feature vector to a class index.
type Estimator interface {
	Predict(features []float64) (int, error)
	NumFeatures() int
	NumClasses() int
}

// Model is the (estimator, label decoder) pair stored in one artifact.
type Model struct {
	Estimator Estimator
	Decoder   *LabelDecoder
	Kind      string
	Path      string
}

func newModel(kind, path string, estimator Estimator, decoder *LabelDecoder) (*Model, error) {
	if estimator.NumFeatures() != len(parameters) {
		return nil, fmt.Errorf("estimator expects %d features, want %d", estimator.NumFeatures(), len(parameters))
	}
	if estimator.NumClasses() != decoder.Len() {
		return nil, fmt.Errorf("estimator has %d classes but decoder has %d labels", estimator.NumClasses(), decoder.Len())
	}
	return &Model{
		Estimator: estimator,
		Decoder:   decoder,
		Kind:      kind,
		Path:      path,
	}, nil
}
