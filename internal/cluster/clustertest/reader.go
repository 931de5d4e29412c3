// Package clustertest provides an in-memory cluster.Reader for tests.
package clustertest

import (
	"context"
	"sync"

	"github.com/kubeadapt/spotinst-autoscaler/internal/cluster"
	"github.com/kubeadapt/spotinst-autoscaler/internal/nodegroup"
	"github.com/kubeadapt/spotinst-autoscaler/pkg/model"
)

var _ cluster.Reader = (*Reader)(nil)

// Reader serves fixed snapshots. Pending returns successive pending-pod
// samples; the last sample repeats once exhausted.
type Reader struct {
	Nodes   []model.NodeSnapshot
	Running []model.PodSnapshot
	Pending [][]model.PodSnapshot
	Usage   map[string]model.ResourceStrings

	NodesErr   error
	PodsErr    error
	UsageErr   error
	PendingErr error

	mu           sync.Mutex
	pendingCalls int
	nodeQueries  []string
}

// ListNodes returns the nodes whose labels match filter.
func (r *Reader) ListNodes(_ context.Context, filter nodegroup.Filter) ([]model.NodeSnapshot, error) {
	if r.NodesErr != nil {
		return nil, r.NodesErr
	}
	var out []model.NodeSnapshot
	for _, n := range r.Nodes {
		if filter.Matches(n.Labels) {
			out = append(out, n)
		}
	}
	return out, nil
}

// ListPods returns Running or the next Pending sample. The filter is not
// applied to pods; their labels are not modeled.
func (r *Reader) ListPods(_ context.Context, phase model.PodPhase, _ nodegroup.Filter) ([]model.PodSnapshot, error) {
	switch phase {
	case model.PodRunning:
		if r.PodsErr != nil {
			return nil, r.PodsErr
		}
		return r.Running, nil
	case model.PodPending:
		if r.PendingErr != nil {
			return nil, r.PendingErr
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		if len(r.Pending) == 0 {
			return nil, nil
		}
		i := min(r.pendingCalls, len(r.Pending)-1)
		r.pendingCalls++
		return r.Pending[i], nil
	}
	return nil, nil
}

// ListPodsOnNode returns the Running pods bound to nodeName.
func (r *Reader) ListPodsOnNode(_ context.Context, phase model.PodPhase, nodeName string) ([]model.PodSnapshot, error) {
	if r.PodsErr != nil {
		return nil, r.PodsErr
	}
	r.mu.Lock()
	r.nodeQueries = append(r.nodeQueries, nodeName)
	r.mu.Unlock()

	if phase != model.PodRunning {
		return nil, nil
	}
	var out []model.PodSnapshot
	for _, p := range r.Running {
		if p.NodeName == nodeName {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListNodeUsage returns Usage.
func (r *Reader) ListNodeUsage(_ context.Context) (map[string]model.ResourceStrings, error) {
	if r.UsageErr != nil {
		return nil, r.UsageErr
	}
	return r.Usage, nil
}

// PendingCalls reports how many pending samples were taken.
func (r *Reader) PendingCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pendingCalls
}

// NodeQueries returns the node names passed to ListPodsOnNode, in order.
func (r *Reader) NodeQueries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.nodeQueries...)
}
