package ml

import (
	"errors"
	"testing"
)

const stumpNodes = `[
	{"feature_idx": 3, "threshold": 120, "left_child": 1, "right_child": 2, "class_label": 0, "is_leaf": false},
	{"feature_idx": -1, "threshold": 0, "left_child": -1, "right_child": -1, "class_label": 2, "is_leaf": true},
	{"feature_idx": -1, "threshold": 0, "left_child": -1, "right_child": -1, "class_label": 0, "is_leaf": true}
]`

func TestDecisionTreePredict(t *testing.T) {
	model, err := parseDecisionTree([]byte(stumpNodes), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	label, err := model.Predict(FeatureVector{UCS: 120}.Values())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 2 {
		t.Fatalf("expected label 2 at the threshold, got %d", label)
	}

	label, err = model.Predict(FeatureVector{UCS: 121}.Values())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected label 0 above the threshold, got %d", label)
	}
}

func TestDecisionTreeRejectsWrongArity(t *testing.T) {
	model, err := parseDecisionTree([]byte(stumpNodes), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := model.Predict([]float64{1, 2}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDecisionTreeValidatesNodes(t *testing.T) {
	cases := map[string]string{
		"empty":         `[]`,
		"label range":   `[{"is_leaf": true, "class_label": 5}]`,
		"feature range": `[{"feature_idx": 9, "left_child": 1, "right_child": 2}, {"is_leaf": true}, {"is_leaf": true}]`,
		"cycle":         `[{"feature_idx": 0, "left_child": 0, "right_child": 1}, {"is_leaf": true}]`,
	}
	for name, payload := range cases {
		if _, err := parseDecisionTree([]byte(payload), 3); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
