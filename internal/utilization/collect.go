package utilization

import (
	"context"
	"log/slog"

	"github.com/kubeadapt/spotinst-autoscaler/internal/cluster"
	"github.com/kubeadapt/spotinst-autoscaler/internal/nodegroup"
	"github.com/kubeadapt/spotinst-autoscaler/pkg/model"
)

// Collect reads the node group through reader and aggregates it.
//
// With a filter, running pods are the union of per-node queries over the
// filtered nodes. Usage metrics are always read cluster-wide.
func Collect(ctx context.Context, reader cluster.Reader, filter nodegroup.Filter) (model.UtilizationResult, model.UsageTotals, error) {
	nodes, err := reader.ListNodes(ctx, filter)
	if err != nil {
		return model.UtilizationResult{}, model.UsageTotals{}, err
	}

	pods, err := runningPods(ctx, reader, nodes, filter)
	if err != nil {
		return model.UtilizationResult{}, model.UsageTotals{}, err
	}

	usage, err := reader.ListNodeUsage(ctx)
	if err != nil {
		return model.UtilizationResult{}, model.UsageTotals{}, err
	}

	result, totals, err := Aggregate(nodes, pods, usage)
	if err != nil {
		return result, totals, err
	}

	slog.Debug("utilization aggregated",
		"node_group", filter.String(),
		"nodes", totals.NodeCount,
		"running_pods", totals.RunningPodCount,
		"usage_nodes", len(usage),
		"cpu_percent", result.CPUPercent,
		"memory_percent", result.MemoryPercent,
	)
	return result, totals, nil
}

func runningPods(ctx context.Context, reader cluster.Reader, nodes []model.NodeSnapshot, filter nodegroup.Filter) ([]model.PodSnapshot, error) {
	if filter.IsZero() {
		return reader.ListPods(ctx, model.PodRunning, filter)
	}

	var pods []model.PodSnapshot
	for _, n := range nodes {
		onNode, err := reader.ListPodsOnNode(ctx, model.PodRunning, n.Name)
		if err != nil {
			return nil, err
		}
		pods = append(pods, onNode...)
	}
	return pods, nil
}
