package discovery

import (
	"strings"

	v1 "k8s.io/api/core/v1"
)

// Provider name constants.
const (
	providerAWS     = "aws"
	providerGCP     = "gcp"
	providerAzure   = "azure"
	providerUnknown = "unknown"
)

var providerIDPrefixes = []struct {
	prefix   string
	provider string
}{
	{"aws://", providerAWS},
	{"gce://", providerGCP},
	{"azure://", providerAzure},
}

// providerLabels are node labels that identify a provider when
// spec.providerID is empty. Spotinst-managed AWS nodes carry the
// spotinst.io lifecycle label.
var providerLabels = []struct {
	label    string
	provider string
}{
	{"spotinst.io/node-lifecycle", providerAWS},
	{"eks.amazonaws.com/nodegroup", providerAWS},
	{"eks.amazonaws.com/capacityType", providerAWS},
	{"cloud.google.com/gke-nodepool", providerGCP},
	{"kubernetes.azure.com/agentpool", providerAzure},
}

// DetectProvider returns the cloud provider of the first node that carries
// a recognizable providerID or label: "aws", "gcp", "azure" or "unknown".
func DetectProvider(nodes []*v1.Node) string {
	for _, node := range nodes {
		if node == nil {
			continue
		}
		for _, p := range providerIDPrefixes {
			if strings.HasPrefix(node.Spec.ProviderID, p.prefix) {
				return p.provider
			}
		}
		for _, p := range providerLabels {
			if _, ok := node.Labels[p.label]; ok {
				return p.provider
			}
		}
	}
	return providerUnknown
}
