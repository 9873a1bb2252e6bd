package ml

import (
	"errors"
	"fmt"
)

// LabelDecoder maps class indices back to tunneling method names.
type LabelDecoder struct {
	classes []string
}

func NewLabelDecoder(classes []string) (*LabelDecoder, error) {
	if len(classes) == 0 {
		return nil, errors.New("label decoder has no classes")
	}
	seen := make(map[string]bool, len(classes))
	for _, c := range classes {
		if c == "" {
			return nil, errors.New("label decoder has an empty class")
		}
		if seen[c] {
			return nil, fmt.Errorf("duplicate class %q", c)
		}
		seen[c] = true
	}
	return &LabelDecoder{classes: append([]string(nil), classes...)}, nil
}

func (d *LabelDecoder) Decode(index int) (string, error) {
	if index < 0 || index >= len(d.classes) {
		return "", fmt.Errorf("%w: class index %d out of range [0,%d)", ErrInvalidInput, index, len(d.classes))
	}
	return d.classes[index], nil
}

func (d *LabelDecoder) Classes() []string {
	return append([]string(nil), d.classes...)
}

func (d *LabelDecoder) Contains(label string) bool {
	for _, c := range d.classes {
		if c == label {
			return true
		}
	}
	return false
}

func (d *LabelDecoder) Len() int {
	return len(d.classes)
}
