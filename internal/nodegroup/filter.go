// Package nodegroup holds the label filter that narrows an evaluation to
// one group of nodes.
package nodegroup

import (
	"errors"
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/util/validation"
)

// ErrMalformedFilter is returned when a filter string is not a single key=value pair.
var ErrMalformedFilter = errors.New("malformed node group filter")

// Filter selects nodes carrying one label. The zero value selects the whole cluster.
type Filter struct {
	Key   string
	Value string
}

// Parse builds a Filter from a "key=value" string. An empty string yields
// the zero Filter.
func Parse(raw string) (Filter, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Filter{}, nil
	}
	if strings.Count(raw, "=") != 1 {
		return Filter{}, fmt.Errorf("%w: %q must contain exactly one '='", ErrMalformedFilter, raw)
	}
	key, value, _ := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		return Filter{}, fmt.Errorf("%w: %q needs both a key and a value", ErrMalformedFilter, raw)
	}
	if errs := validation.IsQualifiedName(key); len(errs) > 0 {
		return Filter{}, fmt.Errorf("%w: key %q: %s", ErrMalformedFilter, key, strings.Join(errs, "; "))
	}
	if errs := validation.IsValidLabelValue(value); len(errs) > 0 {
		return Filter{}, fmt.Errorf("%w: value %q: %s", ErrMalformedFilter, value, strings.Join(errs, "; "))
	}
	return Filter{Key: key, Value: value}, nil
}

// IsZero reports whether the filter selects the whole cluster.
func (f Filter) IsZero() bool {
	return f.Key == ""
}

// Selector returns the label selector string for list calls, "" for the zero Filter.
func (f Filter) Selector() string {
	if f.IsZero() {
		return ""
	}
	return labels.SelectorFromSet(labels.Set{f.Key: f.Value}).String()
}

// Matches reports whether a label set satisfies the filter.
// The zero Filter matches everything.
func (f Filter) Matches(set map[string]string) bool {
	if f.IsZero() {
		return true
	}
	v, ok := set[f.Key]
	return ok && v == f.Value
}

// EqualsConstraint reports whether a placement constraint is exactly {Key: Value}.
func (f Filter) EqualsConstraint(constraint map[string]string) bool {
	if len(constraint) != 1 {
		return false
	}
	v, ok := constraint[f.Key]
	return ok && v == f.Value
}

// String returns the "key=value" form, or "" for the zero Filter.
func (f Filter) String() string {
	if f.IsZero() {
		return ""
	}
	return f.Key + "=" + f.Value
}
