package convert

import (
	corev1 "k8s.io/api/core/v1"

	"github.com/kubeadapt/spotinst-autoscaler/pkg/model"
)

// NodeToSnapshot converts a Kubernetes Node object to a model.NodeSnapshot.
// No side effects. Quantities stay as API strings.
func NodeToSnapshot(node *corev1.Node) model.NodeSnapshot {
	return model.NodeSnapshot{
		Name:   node.Name,
		Labels: node.Labels,
		Allocatable: model.ResourceStrings{
			CPU:    quantityString(node.Status.Allocatable, corev1.ResourceCPU),
			Memory: quantityString(node.Status.Allocatable, corev1.ResourceMemory),
		},
	}
}

// quantityString returns the canonical string of a resource in a ResourceList,
// or "" when the resource is absent.
func quantityString(rl corev1.ResourceList, name corev1.ResourceName) string {
	q, ok := rl[name]
	if !ok {
		return ""
	}
	return q.String()
}

// ResourceListToStrings extracts cpu and memory from a ResourceList.
func ResourceListToStrings(rl corev1.ResourceList) model.ResourceStrings {
	return model.ResourceStrings{
		CPU:    quantityString(rl, corev1.ResourceCPU),
		Memory: quantityString(rl, corev1.ResourceMemory),
	}
}
