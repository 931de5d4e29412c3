// Package utilization turns node and pod snapshots into CPU and memory
// utilization percentages for one node group.
package utilization

import (
	stderrors "errors"
	"fmt"
	"math"

	"github.com/kubeadapt/spotinst-autoscaler/internal/convert"
	"github.com/kubeadapt/spotinst-autoscaler/internal/errors"
	"github.com/kubeadapt/spotinst-autoscaler/pkg/model"
)

const component = "utilization"

// ErrNoAllocatableCapacity is returned when the node set has zero allocatable
// cpu or memory, which leaves the percentages undefined.
var ErrNoAllocatableCapacity = stderrors.New("no allocatable capacity")

// Aggregate computes utilization as floor(max(used, requested) / allocatable * 100)
// for cpu and memory.
//
// Allocatable is summed over nodes and requests over every container of
// runningPods. Usage is summed over every entry of usage, whether or not the
// node is in nodes.
func Aggregate(nodes []model.NodeSnapshot, runningPods []model.PodSnapshot, usage map[string]model.ResourceStrings) (model.UtilizationResult, model.UsageTotals, error) {
	totals := model.UsageTotals{
		NodeCount:       len(nodes),
		RunningPodCount: len(runningPods),
	}

	for _, n := range nodes {
		cpu, err := normalize(n.Allocatable.CPU, "node %s allocatable cpu", n.Name)
		if err != nil {
			return model.UtilizationResult{}, totals, err
		}
		mem, err := normalize(n.Allocatable.Memory, "node %s allocatable memory", n.Name)
		if err != nil {
			return model.UtilizationResult{}, totals, err
		}
		totals.AllocatableCPU += cpu
		totals.AllocatableMemory += mem
	}

	for _, p := range runningPods {
		for _, c := range p.Containers {
			// Absent requests are zero demand.
			if c.CPU != nil {
				cpu, err := normalize(*c.CPU, "pod %s/%s container %s cpu request", p.Namespace, p.Name, c.Name)
				if err != nil {
					return model.UtilizationResult{}, totals, err
				}
				totals.RequestedCPU += cpu
			}
			if c.Memory != nil {
				mem, err := normalize(*c.Memory, "pod %s/%s container %s memory request", p.Namespace, p.Name, c.Name)
				if err != nil {
					return model.UtilizationResult{}, totals, err
				}
				totals.RequestedMemory += mem
			}
		}
	}

	for name, u := range usage {
		cpu, err := normalize(u.CPU, "node %s cpu usage", name)
		if err != nil {
			return model.UtilizationResult{}, totals, err
		}
		mem, err := normalize(u.Memory, "node %s memory usage", name)
		if err != nil {
			return model.UtilizationResult{}, totals, err
		}
		totals.UsedCPU += cpu
		totals.UsedMemory += mem
	}

	if totals.AllocatableCPU == 0 || totals.AllocatableMemory == 0 {
		return model.UtilizationResult{}, totals, errors.New(errors.ErrNoAllocatableCapacity, component,
			fmt.Sprintf("%d nodes have %.3f cpu and %.0f bytes allocatable", len(nodes), totals.AllocatableCPU, totals.AllocatableMemory),
			ErrNoAllocatableCapacity)
	}

	return model.UtilizationResult{
		CPUPercent:    percent(math.Max(totals.UsedCPU, totals.RequestedCPU), totals.AllocatableCPU),
		MemoryPercent: percent(math.Max(totals.UsedMemory, totals.RequestedMemory), totals.AllocatableMemory),
	}, totals, nil
}

// percent multiplies before dividing so whole-unit ratios floor exactly.
func percent(effective, allocatable float64) int {
	return int(math.Floor(effective * 100 / allocatable))
}

func normalize(raw, format string, args ...any) (float64, error) {
	v, err := convert.NormalizeOptional(raw)
	if err != nil {
		return 0, errors.New(errors.ErrUnrecognizedUnit, component, fmt.Sprintf(format, args...), err)
	}
	return v, nil
}
