package starvation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubeadapt/spotinst-autoscaler/internal/nodegroup"
	"github.com/kubeadapt/spotinst-autoscaler/pkg/model"
)

const insufficientCPU = "0/3 nodes are available: 3 Insufficient cpu."

func pendingPod(name, reason, message string) model.PodSnapshot {
	return model.PodSnapshot{
		Name:      name,
		Namespace: "default",
		Phase:     model.PodPending,
		Scheduling: &model.SchedulingCondition{
			Status:  "False",
			Reason:  reason,
			Message: message,
		},
	}
}

func withSelector(p model.PodSnapshot, sel map[string]string) model.PodSnapshot {
	p.NodeSelector = sel
	return p
}

func withAffinity(p model.PodSnapshot, key, value string) model.PodSnapshot {
	p.RequiredAffinity = &model.RequiredNodeAffinity{
		Terms: []model.NodeSelectorTerm{{
			Expressions: []model.MatchExpression{{Key: key, Operator: "In", Values: []string{value}}},
		}},
	}
	return p
}

func mustFilter(t *testing.T, raw string) nodegroup.Filter {
	t.Helper()
	f, err := nodegroup.Parse(raw)
	require.NoError(t, err)
	return f
}

func TestResourceStarved(t *testing.T) {
	tests := []struct {
		name string
		pod  model.PodSnapshot
		want bool
	}{
		{"insufficient cpu", pendingPod("p", "Unschedulable", insufficientCPU), true},
		{"insufficient memory", pendingPod("p", "Unschedulable", "0/5 nodes are available: 5 Insufficient memory."), true},
		{"gpu", pendingPod("p", "Unschedulable", "0/2 nodes are available: 2 Insufficient nvidia.com/gpu."), true},
		{"ephemeral storage", pendingPod("p", "Unschedulable", "0/2 nodes are available: 2 Insufficient ephemeral-storage."), true},
		{"taint only", pendingPod("p", "Unschedulable", "0/3 nodes are available: 3 node(s) had untolerated taint."), false},
		{"no nodes fragment", pendingPod("p", "Unschedulable", "Insufficient cpu"), false},
		{"other reason", pendingPod("p", "SchedulerError", insufficientCPU), false},
		{"no condition", model.PodSnapshot{Name: "p", Phase: model.PodPending}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResourceStarved(tt.pod))
		})
	}
}

func TestHasResourceStarvedPending_NoFilter(t *testing.T) {
	pods := []model.PodSnapshot{
		pendingPod("waiting", "Unschedulable", "0/3 nodes are available: volume node affinity conflict."),
		withSelector(pendingPod("starved", "Unschedulable", insufficientCPU), map[string]string{"zone": "elsewhere"}),
	}
	assert.True(t, HasResourceStarvedPending(pods, nodegroup.Filter{}))
	assert.False(t, HasResourceStarvedPending(pods[:1], nodegroup.Filter{}))
	assert.False(t, HasResourceStarvedPending(nil, nodegroup.Filter{}))
}

func TestHasResourceStarvedPending_MatchingSelector(t *testing.T) {
	pods := []model.PodSnapshot{
		withSelector(pendingPod("web", "Unschedulable", insufficientCPU), map[string]string{"zone": "us-east-1b"}),
	}
	assert.True(t, HasResourceStarvedPending(pods, mustFilter(t, "zone=us-east-1b")))
	assert.False(t, HasResourceStarvedPending(pods, mustFilter(t, "zone=us-east-1z")))
}

func TestHasResourceStarvedPending_NoConstraint(t *testing.T) {
	pods := []model.PodSnapshot{pendingPod("anywhere", "Unschedulable", insufficientCPU)}
	assert.True(t, HasResourceStarvedPending(pods, mustFilter(t, "zone=us-east-1b")))
	assert.True(t, HasResourceStarvedPending(pods, mustFilter(t, "pool=spot")))
}

func TestHasResourceStarvedPending_Affinity(t *testing.T) {
	pods := []model.PodSnapshot{
		withAffinity(pendingPod("pinned", "Unschedulable", insufficientCPU), "pool", "spot"),
	}
	assert.True(t, HasResourceStarvedPending(pods, mustFilter(t, "pool=spot")))
	assert.False(t, HasResourceStarvedPending(pods, mustFilter(t, "pool=on-demand")))
}

func TestHasResourceStarvedPending_MultiKeySelectorNeverMatches(t *testing.T) {
	pods := []model.PodSnapshot{
		withSelector(pendingPod("multi", "Unschedulable", insufficientCPU), map[string]string{
			"zone": "us-east-1b",
			"pool": "spot",
		}),
	}
	assert.False(t, HasResourceStarvedPending(pods, mustFilter(t, "zone=us-east-1b")))
}

func TestHasResourceStarvedPending_FirstQualifyingPodDecides(t *testing.T) {
	// The second pod would match, but only the first starved pod is inspected.
	pods := []model.PodSnapshot{
		withSelector(pendingPod("other-group", "Unschedulable", insufficientCPU), map[string]string{"zone": "us-east-1a"}),
		withSelector(pendingPod("this-group", "Unschedulable", insufficientCPU), map[string]string{"zone": "us-east-1b"}),
	}
	assert.False(t, HasResourceStarvedPending(pods, mustFilter(t, "zone=us-east-1b")))

	pods[0], pods[1] = pods[1], pods[0]
	assert.True(t, HasResourceStarvedPending(pods, mustFilter(t, "zone=us-east-1b")))
}

func TestFirstStarved(t *testing.T) {
	pods := []model.PodSnapshot{
		pendingPod("a", "SchedulingGated", ""),
		pendingPod("b", "Unschedulable", insufficientCPU),
		pendingPod("c", "Unschedulable", insufficientCPU),
	}
	got, ok := FirstStarved(pods)
	require.True(t, ok)
	assert.Equal(t, "b", got.Name)

	_, ok = FirstStarved(pods[:1])
	assert.False(t, ok)
}
