package ml

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// BoundsError lists the sliders that are outside their range, e.g.
// "rmr must be at most 100".
type BoundsError struct {
	Violations []string
}

func (e *BoundsError) Error() string { return strings.Join(e.Violations, "; ") }

func (e *BoundsError) Is(target error) bool { return target == ErrInvalidInput }

// ValidateFeatures checks f against the slider bounds in the parameter table.
// Every input surface calls it before classifying; Classify does not.
func ValidateFeatures(f FeatureVector) error {
	err := getValidator().Struct(f)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return &BoundsError{Violations: []string{err.Error()}}
	}
	violations := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		switch fe.Tag() {
		case "min":
			violations = append(violations, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max":
			violations = append(violations, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		default:
			violations = append(violations, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return &BoundsError{Violations: violations}
}
