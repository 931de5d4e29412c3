// Package cluster reads nodes, pods and node usage from the Kubernetes API
// and returns them as per-cycle snapshots.
package cluster

import (
	"context"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/fields"
	"k8s.io/client-go/kubernetes"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"
	metricsv1beta1client "k8s.io/metrics/pkg/client/clientset/versioned/typed/metrics/v1beta1"

	"github.com/kubeadapt/spotinst-autoscaler/internal/convert"
	"github.com/kubeadapt/spotinst-autoscaler/internal/errors"
	"github.com/kubeadapt/spotinst-autoscaler/internal/nodegroup"
	"github.com/kubeadapt/spotinst-autoscaler/internal/observability"
	"github.com/kubeadapt/spotinst-autoscaler/pkg/model"
)

const component = "cluster"

// Reader is the cluster query collaborator used by the decision core.
// Quantities are returned as raw API strings.
type Reader interface {
	// ListNodes returns the nodes matching filter (all nodes for the zero Filter).
	ListNodes(ctx context.Context, filter nodegroup.Filter) ([]model.NodeSnapshot, error)
	// ListPods returns pods in phase whose labels match filter.
	ListPods(ctx context.Context, phase model.PodPhase, filter nodegroup.Filter) ([]model.PodSnapshot, error)
	// ListPodsOnNode returns pods in phase bound to nodeName.
	ListPodsOnNode(ctx context.Context, phase model.PodPhase, nodeName string) ([]model.PodSnapshot, error)
	// ListNodeUsage returns live usage keyed by node name, cluster-wide.
	ListNodeUsage(ctx context.Context) (map[string]model.ResourceStrings, error)
}

// MetricsAPI abstracts the metrics-server API for testability.
type MetricsAPI interface {
	ListNodeMetrics(ctx context.Context) ([]metricsv1beta1.NodeMetrics, error)
}

// metricsAPIClient wraps the real metrics client to implement MetricsAPI.
type metricsAPIClient struct {
	client metricsv1beta1client.MetricsV1beta1Interface
}

func (c *metricsAPIClient) ListNodeMetrics(ctx context.Context) ([]metricsv1beta1.NodeMetrics, error) {
	list, err := c.client.NodeMetricses().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}

// NewMetricsAPI wraps a metrics.k8s.io client.
func NewMetricsAPI(client metricsv1beta1client.MetricsV1beta1Interface) MetricsAPI {
	return &metricsAPIClient{client: client}
}

// KubeReader implements Reader against a live cluster. Every call is bounded
// by timeout and is never retried.
type KubeReader struct {
	client  kubernetes.Interface
	metrics MetricsAPI
	timeout time.Duration
	obs     *observability.Metrics
}

// NewKubeReader creates a KubeReader. obs may be nil.
func NewKubeReader(client kubernetes.Interface, metrics MetricsAPI, timeout time.Duration, obs *observability.Metrics) *KubeReader {
	return &KubeReader{
		client:  client,
		metrics: metrics,
		timeout: timeout,
		obs:     obs,
	}
}

// ListNodes implements Reader.
func (r *KubeReader) ListNodes(ctx context.Context, filter nodegroup.Filter) ([]model.NodeSnapshot, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	list, err := r.client.CoreV1().Nodes().List(ctx, metav1.ListOptions{
		LabelSelector: filter.Selector(),
	})
	r.observe("nodes", start, err)
	if err != nil {
		return nil, errors.New(errors.ErrTransport, component, "list nodes", err)
	}

	out := make([]model.NodeSnapshot, 0, len(list.Items))
	for i := range list.Items {
		node := &list.Items[i]
		if !filter.Matches(node.Labels) {
			continue
		}
		out = append(out, convert.NodeToSnapshot(node))
	}
	return out, nil
}

// ListPods implements Reader.
func (r *KubeReader) ListPods(ctx context.Context, phase model.PodPhase, filter nodegroup.Filter) ([]model.PodSnapshot, error) {
	return r.listPods(ctx, phase, filter, "")
}

// ListPodsOnNode implements Reader.
func (r *KubeReader) ListPodsOnNode(ctx context.Context, phase model.PodPhase, nodeName string) ([]model.PodSnapshot, error) {
	return r.listPods(ctx, phase, nodegroup.Filter{}, nodeName)
}

func (r *KubeReader) listPods(ctx context.Context, phase model.PodPhase, filter nodegroup.Filter, nodeName string) ([]model.PodSnapshot, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	list, err := r.client.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{
		LabelSelector: filter.Selector(),
		FieldSelector: podFieldSelector(phase, nodeName),
	})
	r.observe("pods", start, err)
	if err != nil {
		return nil, errors.New(errors.ErrTransport, component, "list pods", err)
	}

	out := make([]model.PodSnapshot, 0, len(list.Items))
	for i := range list.Items {
		pod := &list.Items[i]
		snap := convert.PodToSnapshot(pod)
		// Selectors are re-checked locally so a server that ignores them
		// cannot widen the result.
		if snap.Phase != phase || (nodeName != "" && pod.Spec.NodeName != nodeName) || !filter.Matches(pod.Labels) {
			continue
		}
		out = append(out, snap)
	}
	return out, nil
}

// ListNodeUsage implements Reader.
func (r *KubeReader) ListNodeUsage(ctx context.Context) (map[string]model.ResourceStrings, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	items, err := r.metrics.ListNodeMetrics(ctx)
	r.observe("node_metrics", start, err)
	if err != nil {
		return nil, errors.New(errors.ErrTransport, component, "list node metrics", err)
	}

	out := make(map[string]model.ResourceStrings, len(items))
	for _, nm := range items {
		out[nm.Name] = convert.ResourceListToStrings(nm.Usage)
	}
	return out, nil
}

func (r *KubeReader) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *KubeReader) observe(resource string, start time.Time, err error) {
	if r.obs == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	r.obs.KubeAPIDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())
	r.obs.KubeAPIRequestsTotal.WithLabelValues(resource, status).Inc()
}

// podFieldSelector builds the server-side selector for phase and node.
func podFieldSelector(phase model.PodPhase, nodeName string) string {
	var selectors []fields.Selector
	switch phase {
	case model.PodRunning:
		selectors = append(selectors, fields.OneTermEqualSelector("status.phase", string(corev1.PodRunning)))
	case model.PodPending:
		selectors = append(selectors, fields.OneTermEqualSelector("status.phase", string(corev1.PodPending)))
	}
	if nodeName != "" {
		selectors = append(selectors, fields.OneTermEqualSelector("spec.nodeName", nodeName))
	}
	if len(selectors) == 0 {
		return ""
	}
	return fields.AndSelectors(selectors...).String()
}
