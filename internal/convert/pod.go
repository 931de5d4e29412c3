package convert

import (
	corev1 "k8s.io/api/core/v1"

	"github.com/kubeadapt/spotinst-autoscaler/pkg/model"
)

// PodToSnapshot converts a Kubernetes Pod object to a model.PodSnapshot.
// No side effects, no external calls.
func PodToSnapshot(pod *corev1.Pod) model.PodSnapshot {
	return model.PodSnapshot{
		Name:             pod.Name,
		Namespace:        pod.Namespace,
		NodeName:         pod.Spec.NodeName,
		Phase:            podPhase(pod.Status.Phase),
		Containers:       convertContainers(pod.Spec.Containers),
		NodeSelector:     pod.Spec.NodeSelector,
		RequiredAffinity: convertRequiredAffinity(pod.Spec.Affinity),
		Scheduling:       latestSchedulingCondition(pod.Status.Conditions),
	}
}

func podPhase(phase corev1.PodPhase) model.PodPhase {
	switch phase {
	case corev1.PodRunning:
		return model.PodRunning
	case corev1.PodPending:
		return model.PodPending
	default:
		return model.PodOther
	}
}

// convertContainers keeps only the declared cpu/memory requests.
// Init containers are not counted.
func convertContainers(specs []corev1.Container) []model.ContainerRequest {
	if len(specs) == 0 {
		return nil
	}
	out := make([]model.ContainerRequest, len(specs))
	for i, spec := range specs {
		out[i] = model.ContainerRequest{
			Name:   spec.Name,
			CPU:    requestString(spec.Resources.Requests, corev1.ResourceCPU),
			Memory: requestString(spec.Resources.Requests, corev1.ResourceMemory),
		}
	}
	return out
}

// requestString returns nil when the request is not declared.
func requestString(rl corev1.ResourceList, name corev1.ResourceName) *string {
	q, ok := rl[name]
	if !ok {
		return nil
	}
	s := q.String()
	return &s
}

// convertRequiredAffinity returns nil unless the pod declares a
// requiredDuringSchedulingIgnoredDuringExecution node affinity.
func convertRequiredAffinity(affinity *corev1.Affinity) *model.RequiredNodeAffinity {
	if affinity == nil || affinity.NodeAffinity == nil {
		return nil
	}
	required := affinity.NodeAffinity.RequiredDuringSchedulingIgnoredDuringExecution
	if required == nil {
		return nil
	}

	out := &model.RequiredNodeAffinity{}
	for _, term := range required.NodeSelectorTerms {
		t := model.NodeSelectorTerm{}
		for _, expr := range term.MatchExpressions {
			t.Expressions = append(t.Expressions, model.MatchExpression{
				Key:      expr.Key,
				Operator: string(expr.Operator),
				Values:   expr.Values,
			})
		}
		out.Terms = append(out.Terms, t)
	}
	return out
}

// latestSchedulingCondition returns the PodScheduled condition with the most
// recent transition time. Later entries win ties.
func latestSchedulingCondition(conditions []corev1.PodCondition) *model.SchedulingCondition {
	var latest *corev1.PodCondition
	for i := range conditions {
		c := &conditions[i]
		if c.Type != corev1.PodScheduled {
			continue
		}
		if latest == nil || !c.LastTransitionTime.Before(&latest.LastTransitionTime) {
			latest = c
		}
	}
	if latest == nil {
		return nil
	}
	return &model.SchedulingCondition{
		Status:  string(latest.Status),
		Reason:  latest.Reason,
		Message: latest.Message,
	}
}
