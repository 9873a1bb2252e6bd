package http

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"rockmass/ml"
)

// inputError is a request rejected at the slider boundary, before the
// classifier sees it.
type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func isInputError(err error) bool {
	var ie *inputError
	return errors.As(err, &ie)
}

// parseFeatures reads the five sliders from a query string. Missing keys keep
// their default slider position.
func parseFeatures(query url.Values) (ml.FeatureVector, error) {
	features := ml.DefaultFeatures()
	for _, key := range ml.FeatureNames() {
		raw := query.Get(key)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return features, &inputError{msg: fmt.Sprintf("%s must be an integer", key)}
		}
		features.Set(key, value)
	}
	return features, validateFeatures(features)
}

// validateFeatures enforces the slider bounds declared on ml.FeatureVector.
func validateFeatures(features ml.FeatureVector) error {
	if err := ml.ValidateFeatures(features); err != nil {
		return &inputError{msg: err.Error()}
	}
	return nil
}
