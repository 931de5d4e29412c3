// Package affinity extracts the single placement constraint a pod declares.
package affinity

import (
	"maps"

	"github.com/kubeadapt/spotinst-autoscaler/pkg/model"
)

// ResolveConstraint returns the pod's effective node placement constraint.
//
// A non-empty node selector wins when no required node affinity is declared.
// Otherwise the first value of the first expression of the first required
// term is used. Multi-term, multi-expression and multi-value affinities are
// not supported; only that first entry is considered. Anything else yields
// an empty map.
func ResolveConstraint(pod model.PodSnapshot) map[string]string {
	if len(pod.NodeSelector) > 0 && pod.RequiredAffinity == nil {
		return maps.Clone(pod.NodeSelector)
	}
	if pod.RequiredAffinity != nil {
		key, value, ok := FirstRequirement(pod.RequiredAffinity)
		if !ok {
			return map[string]string{}
		}
		return map[string]string{key: value}
	}
	return map[string]string{}
}

// FirstRequirement drills into term[0].expressions[0].values[0].
// ok is false when any hop is missing.
func FirstRequirement(required *model.RequiredNodeAffinity) (key, value string, ok bool) {
	term, ok := firstTerm(required)
	if !ok {
		return "", "", false
	}
	expr, ok := firstExpression(term)
	if !ok {
		return "", "", false
	}
	value, ok = firstValue(expr)
	if !ok {
		return "", "", false
	}
	return expr.Key, value, true
}

func firstTerm(required *model.RequiredNodeAffinity) (model.NodeSelectorTerm, bool) {
	if required == nil || len(required.Terms) == 0 {
		return model.NodeSelectorTerm{}, false
	}
	return required.Terms[0], true
}

func firstExpression(term model.NodeSelectorTerm) (model.MatchExpression, bool) {
	if len(term.Expressions) == 0 {
		return model.MatchExpression{}, false
	}
	return term.Expressions[0], true
}

func firstValue(expr model.MatchExpression) (string, bool) {
	if expr.Key == "" || len(expr.Values) == 0 {
		return "", false
	}
	return expr.Values[0], true
}
