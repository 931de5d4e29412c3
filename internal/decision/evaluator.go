package decision

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kubeadapt/spotinst-autoscaler/internal/cluster"
	"github.com/kubeadapt/spotinst-autoscaler/internal/nodegroup"
	"github.com/kubeadapt/spotinst-autoscaler/internal/utilization"
	"github.com/kubeadapt/spotinst-autoscaler/pkg/model"
)

// StarvationChecker reports whether pending pods are resource-starved and
// how many were pending in the sample that decided it.
type StarvationChecker interface {
	Starved(ctx context.Context, filter nodegroup.Filter) (bool, int, error)
}

// Evaluator runs one evaluation pass against the cluster.
type Evaluator struct {
	reader        cluster.Reader
	starvation    StarvationChecker
	filter        nodegroup.Filter
	thresholds    Thresholds
	elastigroupID string
}

// NewEvaluator creates an Evaluator for one node group.
func NewEvaluator(reader cluster.Reader, starvation StarvationChecker, filter nodegroup.Filter, th Thresholds, elastigroupID string) *Evaluator {
	return &Evaluator{
		reader:        reader,
		starvation:    starvation,
		filter:        filter,
		thresholds:    th,
		elastigroupID: elastigroupID,
	}
}

// Evaluate gathers every signal and returns the decision report. Any error
// aborts the pass; no partial report is returned.
func (e *Evaluator) Evaluate(ctx context.Context) (*model.EvaluationReport, error) {
	start := time.Now()
	report := &model.EvaluationReport{
		EvaluationID:  uuid.NewString(),
		Timestamp:     start.UnixMilli(),
		ElastigroupID: e.elastigroupID,
		NodeGroup:     e.filter.String(),
	}
	log := slog.With("evaluation_id", report.EvaluationID)

	var sig Signals
	if e.thresholds.ScaleOnPendingPods {
		starved, pending, err := e.starvation.Starved(ctx, e.filter)
		if err != nil {
			return nil, err
		}
		sig.Starved = starved
		report.Starved = starved
		report.PendingPods = pending
		log.Debug("pending pods checked", "starved", starved, "pending", pending)
	}

	if !sig.Starved {
		result, totals, err := utilization.Collect(ctx, e.reader, e.filter)
		if err != nil {
			return nil, err
		}
		sig.Utilization = result
		report.Utilization = &result
		report.Totals = &totals
	}

	report.Decision, report.Reason = decide(e.thresholds, sig)
	report.DurationMs = time.Since(start).Milliseconds()

	attrs := []any{
		"decision", report.Decision,
		"reason", report.Reason,
		"node_group", report.NodeGroup,
		"starved", report.Starved,
		"pending_pods", report.PendingPods,
		"duration_ms", report.DurationMs,
	}
	if report.Utilization != nil {
		attrs = append(attrs,
			"cpu_percent", report.Utilization.CPUPercent,
			"memory_percent", report.Utilization.MemoryPercent,
			"nodes", report.Totals.NodeCount,
		)
	}
	log.Info("evaluation complete", attrs...)

	return report, nil
}
