// Package starvation decides whether pending pods are blocked by a lack of
// node resources in the node group.
package starvation

import (
	"strings"

	corev1 "k8s.io/api/core/v1"

	"github.com/kubeadapt/spotinst-autoscaler/internal/affinity"
	"github.com/kubeadapt/spotinst-autoscaler/internal/nodegroup"
	"github.com/kubeadapt/spotinst-autoscaler/pkg/model"
)

// starvedResources are the scheduler message fragments that indicate a
// resource shortfall.
var starvedResources = []string{"cpu", "memory", "gpu", "ephemeral-storage"}

// ResourceStarved reports whether the pod's latest scheduling condition says
// it is unschedulable because nodes lack one of starvedResources.
func ResourceStarved(pod model.PodSnapshot) bool {
	cond := pod.Scheduling
	if cond == nil || cond.Reason != corev1.PodReasonUnschedulable {
		return false
	}
	if !strings.Contains(cond.Message, "nodes") {
		return false
	}
	for _, r := range starvedResources {
		if strings.Contains(cond.Message, r) {
			return true
		}
	}
	return false
}

// FirstStarved returns the first resource-starved pod in pending.
func FirstStarved(pending []model.PodSnapshot) (model.PodSnapshot, bool) {
	for _, pod := range pending {
		if ResourceStarved(pod) {
			return pod, true
		}
	}
	return model.PodSnapshot{}, false
}

// HasResourceStarvedPending reports whether starvation exists for the node
// group. Only the first resource-starved pod is considered: with a filter it
// counts when its placement constraint is exactly the filter label or is
// empty.
func HasResourceStarvedPending(pending []model.PodSnapshot, filter nodegroup.Filter) bool {
	pod, ok := FirstStarved(pending)
	if !ok {
		return false
	}
	if filter.IsZero() {
		return true
	}
	constraint := affinity.ResolveConstraint(pod)
	return len(constraint) == 0 || filter.EqualsConstraint(constraint)
}
