package convert

import (
	"math"
	"testing"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// makeNode returns a test node in the "workers" node group.
func makeNode() *corev1.Node {
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{
			Name: "ip-10-0-1-100.ec2.internal",
			Labels: map[string]string{
				"kubernetes.io/arch":          "amd64",
				"topology.kubernetes.io/zone": "us-east-1a",
				"spotinst.io/node-group":      "workers",
			},
		},
		Status: corev1.NodeStatus{
			Capacity: corev1.ResourceList{
				corev1.ResourceCPU:    resource.MustParse("4"),
				corev1.ResourceMemory: resource.MustParse("16Gi"),
			},
			Allocatable: corev1.ResourceList{
				corev1.ResourceCPU:              resource.MustParse("3920m"),
				corev1.ResourceMemory:           resource.MustParse("15Gi"),
				corev1.ResourceEphemeralStorage: resource.MustParse("95Gi"),
			},
		},
	}
}

func TestNodeToSnapshot_BasicNode(t *testing.T) {
	got := NodeToSnapshot(makeNode())

	assertEqual(t, "Name", got.Name, "ip-10-0-1-100.ec2.internal")
	assertEqual(t, "Allocatable.CPU", got.Allocatable.CPU, "3920m")
	assertEqual(t, "Allocatable.Memory", got.Allocatable.Memory, "15Gi")
	assertEqual(t, "Labels[zone]", got.Labels["topology.kubernetes.io/zone"], "us-east-1a")
}

func TestNodeToSnapshot_MissingAllocatable(t *testing.T) {
	node := makeNode()
	node.Status.Allocatable = nil

	got := NodeToSnapshot(node)
	assertEqual(t, "Allocatable.CPU", got.Allocatable.CPU, "")
	assertEqual(t, "Allocatable.Memory", got.Allocatable.Memory, "")
}

func TestNodeToSnapshot_AllocatableNormalizes(t *testing.T) {
	got := NodeToSnapshot(makeNode())

	cpu, err := Normalize(got.Allocatable.CPU)
	if err != nil {
		t.Fatalf("Normalize(cpu) error = %v", err)
	}
	if math.Abs(cpu-3.92) > 1e-9 {
		t.Errorf("cpu = %v, want 3.92", cpu)
	}
	mem, err := Normalize(got.Allocatable.Memory)
	if err != nil {
		t.Fatalf("Normalize(memory) error = %v", err)
	}
	if mem != 15*1073741824 {
		t.Errorf("memory = %v, want %v", mem, 15*1073741824)
	}
}

func TestResourceListToStrings(t *testing.T) {
	got := ResourceListToStrings(corev1.ResourceList{
		corev1.ResourceCPU: resource.MustParse("250m"),
	})
	assertEqual(t, "CPU", got.CPU, "250m")
	assertEqual(t, "Memory", got.Memory, "")
}

func assertEqual(t *testing.T, field, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %q, want %q", field, got, want)
	}
}
