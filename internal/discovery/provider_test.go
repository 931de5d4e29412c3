package discovery

import (
	"testing"

	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

func nodeWith(providerID string, labels map[string]string) *v1.Node {
	return &v1.Node{
		ObjectMeta: metav1.ObjectMeta{Labels: labels},
		Spec:       v1.NodeSpec{ProviderID: providerID},
	}
}

func TestDetectProvider(t *testing.T) {
	tests := []struct {
		name  string
		nodes []*v1.Node
		want  string
	}{
		{"aws providerID", []*v1.Node{nodeWith("aws:///us-east-1a/i-1234567890abcdef0", nil)}, "aws"},
		{"gce providerID", []*v1.Node{nodeWith("gce://my-project/us-central1-a/my-instance", nil)}, "gcp"},
		{"azure providerID", []*v1.Node{nodeWith("azure:///subscriptions/sub-123/resourceGroups/rg", nil)}, "azure"},
		{"unknown providerID", []*v1.Node{nodeWith("someprovider://instance-123", nil)}, "unknown"},
		{"no nodes", nil, "unknown"},
		{"spotinst label", []*v1.Node{nodeWith("", map[string]string{"spotinst.io/node-lifecycle": "spot"})}, "aws"},
		{"eks label", []*v1.Node{nodeWith("", map[string]string{"eks.amazonaws.com/nodegroup": "my-group"})}, "aws"},
		{"gke label", []*v1.Node{nodeWith("", map[string]string{"cloud.google.com/gke-nodepool": "default-pool"})}, "gcp"},
		{"aks label", []*v1.Node{nodeWith("", map[string]string{"kubernetes.azure.com/agentpool": "nodepool1"})}, "azure"},
		{
			"providerID takes priority over labels",
			[]*v1.Node{nodeWith("aws:///us-east-1a/i-abc123", map[string]string{"cloud.google.com/gke-nodepool": "pool-1"})},
			"aws",
		},
		{
			"first node without signal is skipped",
			[]*v1.Node{nil, nodeWith("", nil), nodeWith("aws:///us-east-1b/i-def456", nil)},
			"aws",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectProvider(tt.nodes); got != tt.want {
				t.Errorf("DetectProvider = %q, want %q", got, tt.want)
			}
		})
	}
}
