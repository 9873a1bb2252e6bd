package ml

import "fmt"

// Recommendation is a decoded tunneling method name.
type Recommendation string

// Classifier turns slider readings into a tunneling method. It holds the
// loaded model read-only and is safe for concurrent use.
type Classifier struct {
	model *Model
}

func NewClassifier(model *Model) (*Classifier, error) {
	if model == nil || model.Estimator == nil || model.Decoder == nil {
		return nil, ErrModelUnavailable
	}
	return &Classifier{model: model}, nil
}

// Classify runs one forward pass and decodes the class index.
func (c *Classifier) Classify(features FeatureVector) (Recommendation, error) {
	return c.ClassifyValues(features.Values())
}

// ClassifyValues classifies a raw vector in [rmr, rqd, gsi, ucs, bts] order.
func (c *Classifier) ClassifyValues(values []float64) (Recommendation, error) {
	if c == nil || c.model == nil {
		return "", ErrModelUnavailable
	}
	index, err := c.model.Estimator.Predict(values)
	if err != nil {
		return "", fmt.Errorf("predict: %w", err)
	}
	label, err := c.model.Decoder.Decode(index)
	if err != nil {
		return "", err
	}
	return Recommendation(label), nil
}

// Labels returns the decoder vocabulary in class index order.
func (c *Classifier) Labels() []string {
	return c.model.Decoder.Classes()
}

func (c *Classifier) Model() *Model {
	return c.model
}
