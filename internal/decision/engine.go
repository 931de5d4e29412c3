// Package decision folds starvation and utilization signals into a single
// scale decision.
package decision

import (
	"fmt"

	"github.com/kubeadapt/spotinst-autoscaler/internal/config"
	"github.com/kubeadapt/spotinst-autoscaler/pkg/model"
)

// Thresholds are the configured percent limits and direction switches.
type Thresholds struct {
	MaxCPU    int
	MaxMemory int
	MinCPU    int
	MinMemory int

	ScaleUpActive      bool
	ScaleDownActive    bool
	ScaleOnPendingPods bool
}

// ThresholdsFromConfig copies the decision settings out of cfg.
func ThresholdsFromConfig(cfg *config.Config) Thresholds {
	return Thresholds{
		MaxCPU:             cfg.MaxCPUUsage,
		MaxMemory:          cfg.MaxMemoryUsage,
		MinCPU:             cfg.MinCPUUsage,
		MinMemory:          cfg.MinMemoryUsage,
		ScaleUpActive:      cfg.ScaleUpActive,
		ScaleDownActive:    cfg.ScaleDownActive,
		ScaleOnPendingPods: cfg.ScaleOnPendingPods,
	}
}

// Signals are the inputs of one evaluation. Utilization is ignored when
// starvation decides the outcome.
type Signals struct {
	Starved     bool
	Utilization model.UtilizationResult
}

// Decide returns the scale decision for signals under th.
func Decide(th Thresholds, sig Signals) model.ScaleDecision {
	d, _ := decide(th, sig)
	return d
}

// decide applies the rules in order: starvation, any resource at or above
// its max, every resource below its min. A rule whose direction is disabled
// yields NoAction.
func decide(th Thresholds, sig Signals) (model.ScaleDecision, string) {
	if th.ScaleOnPendingPods && sig.Starved {
		if !th.ScaleUpActive {
			return model.NoAction, "resource-starved pending pods, scale up disabled"
		}
		return model.ScaleUp, "resource-starved pending pods"
	}

	u := sig.Utilization
	if u.CPUPercent >= th.MaxCPU || u.MemoryPercent >= th.MaxMemory {
		reason := fmt.Sprintf("cpu %d%% (max %d%%), memory %d%% (max %d%%)", u.CPUPercent, th.MaxCPU, u.MemoryPercent, th.MaxMemory)
		if !th.ScaleUpActive {
			return model.NoAction, reason + ", scale up disabled"
		}
		return model.ScaleUp, reason
	}

	if u.CPUPercent < th.MinCPU && u.MemoryPercent < th.MinMemory {
		reason := fmt.Sprintf("cpu %d%% (min %d%%), memory %d%% (min %d%%)", u.CPUPercent, th.MinCPU, u.MemoryPercent, th.MinMemory)
		if !th.ScaleDownActive {
			return model.NoAction, reason + ", scale down disabled"
		}
		return model.ScaleDown, reason
	}

	return model.NoAction, fmt.Sprintf("cpu %d%%, memory %d%% within thresholds", u.CPUPercent, u.MemoryPercent)
}
