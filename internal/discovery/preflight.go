// Package discovery checks at startup that the cluster can serve an
// evaluation.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/kubernetes"

	"github.com/kubeadapt/spotinst-autoscaler/internal/errors"
)

const (
	apiGroupMetrics   = "metrics.k8s.io"
	apiVersionMetrics = "v1beta1"

	providerSampleSize = 5
)

// requirement is one list permission the evaluation depends on.
type requirement struct {
	group    string
	resource string
}

func (r requirement) String() string {
	if r.group == "" {
		return r.resource
	}
	return r.resource + "." + r.group
}

var required = []requirement{
	{group: "", resource: "nodes"},
	{group: "", resource: "pods"},
	{group: apiGroupMetrics, resource: "nodes"},
}

// Capabilities describes what preflight found about the cluster.
type Capabilities struct {
	MetricsServer bool   // metrics.k8s.io serves nodes
	Provider      string // "aws", "gcp", "azure", "unknown"
}

// Preflight verifies the cluster can serve an evaluation: metrics.k8s.io
// must serve node metrics and RBAC must allow listing nodes, pods and node
// metrics. Any missing piece is a PREFLIGHT_FAILED error naming all of them.
func Preflight(ctx context.Context, client kubernetes.Interface, discoveryClient discovery.DiscoveryInterface) (*Capabilities, error) {
	caps := &Capabilities{Provider: providerUnknown}

	served, err := hasAPIGroup(discoveryClient, apiGroupMetrics)
	if err == nil && served {
		served, err = hasResource(discoveryClient, apiGroupMetrics, apiVersionMetrics, "nodes")
	}
	if err != nil {
		return nil, errors.New(errors.ErrPreflightFailed, "discovery", "query API discovery", err)
	}
	if !served {
		return nil, errors.New(errors.ErrPreflightFailed, "discovery",
			fmt.Sprintf("%s/%s nodes is not served; is metrics-server installed?", apiGroupMetrics, apiVersionMetrics), nil)
	}
	caps.MetricsServer = true

	var denied []string
	for _, req := range required {
		ok, err := CanList(ctx, client, req.group, req.resource)
		if err != nil {
			return nil, errors.New(errors.ErrPreflightFailed, "discovery", "check RBAC for "+req.String(), err)
		}
		if !ok {
			denied = append(denied, req.String())
		}
	}
	if len(denied) > 0 {
		return nil, errors.New(errors.ErrPreflightFailed, "discovery",
			"RBAC does not allow list on "+strings.Join(denied, ", "), nil)
	}

	nodeList, err := client.CoreV1().Nodes().List(ctx, metav1.ListOptions{Limit: providerSampleSize})
	if err == nil {
		nodes := make([]*v1.Node, len(nodeList.Items))
		for i := range nodeList.Items {
			nodes[i] = &nodeList.Items[i]
		}
		caps.Provider = DetectProvider(nodes)
	}
	if caps.Provider != providerAWS {
		slog.Warn("cluster does not look like AWS; Elastigroup resizes target AWS groups", "provider", caps.Provider)
	}

	slog.Info("preflight passed", "provider", caps.Provider)
	return caps, nil
}

// hasAPIGroup checks whether a specific API group is registered with the cluster.
func hasAPIGroup(discoveryClient discovery.DiscoveryInterface, group string) (bool, error) {
	groups, err := discoveryClient.ServerGroups()
	if err != nil {
		return false, fmt.Errorf("discovery: failed to list server groups: %w", err)
	}

	for _, g := range groups.Groups {
		if g.Name == group {
			return true, nil
		}
	}
	return false, nil
}
