// Package agent runs one evaluation pass end to end: evaluate, resize,
// record, report.
package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/kubeadapt/spotinst-autoscaler/internal/observability"
	"github.com/kubeadapt/spotinst-autoscaler/internal/spotinst"
	"github.com/kubeadapt/spotinst-autoscaler/pkg/model"
)

// Evaluator produces the decision for one pass.
type Evaluator interface {
	Evaluate(ctx context.Context) (*model.EvaluationReport, error)
}

// Scaler applies a decision to the Elastigroup.
type Scaler interface {
	Apply(ctx context.Context, decision model.ScaleDecision) (spotinst.Result, error)
}

// Reporter delivers a finished report.
type Reporter interface {
	Send(ctx context.Context, report *model.EvaluationReport) error
}

// PushFunc publishes the metrics registry after a pass.
type PushFunc func(ctx context.Context, m *observability.Metrics) error

// Agent wires the evaluation, the resize and the outbound publishing.
type Agent struct {
	evaluator Evaluator
	scaler    Scaler
	reporter  Reporter
	push      PushFunc
	metrics   *observability.Metrics
}

// Option configures optional Agent collaborators.
type Option func(*Agent)

// WithReporter sends every finished report through r.
func WithReporter(r Reporter) Option {
	return func(a *Agent) { a.reporter = r }
}

// WithPush publishes metrics through push after every pass.
func WithPush(push PushFunc) Option {
	return func(a *Agent) { a.push = push }
}

// NewAgent creates an Agent. metrics may be nil.
func NewAgent(evaluator Evaluator, scaler Scaler, metrics *observability.Metrics, opts ...Option) *Agent {
	a := &Agent{
		evaluator: evaluator,
		scaler:    scaler,
		metrics:   metrics,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RunOnce evaluates the node group, applies the decision and publishes the
// outcome. Evaluation and resize errors are returned; report delivery and
// metric push failures are only logged. When the resize fails the report
// is still published and returned with the error.
func (a *Agent) RunOnce(ctx context.Context) (*model.EvaluationReport, error) {
	start := time.Now()

	report, err := a.evaluator.Evaluate(ctx)
	if err != nil {
		slog.Error("evaluation failed", "error", err)
		return nil, err
	}
	log := slog.With("evaluation_id", report.EvaluationID)

	res, scaleErr := a.scaler.Apply(ctx, report.Decision)
	if scaleErr != nil {
		log.Error("resize failed", "decision", report.Decision, "error", scaleErr)
	} else {
		applyResult(report, res)
	}
	report.DurationMs = time.Since(start).Milliseconds()

	a.metrics.Record(report)
	a.publish(ctx, report)

	log.Info("evaluation finished",
		"decision", report.Decision,
		"action", actionLabel(report.Action),
		"dry_run", report.DryRun,
		"duration_ms", report.DurationMs,
	)
	return report, scaleErr
}

func applyResult(report *model.EvaluationReport, res spotinst.Result) {
	report.Action = res.Action
	report.DryRun = res.DryRun
	if report.Decision == model.NoAction {
		return
	}
	current, target := res.Current, res.Target
	report.InstanceCount = &current
	report.TargetCount = &target
}

func (a *Agent) publish(ctx context.Context, report *model.EvaluationReport) {
	if a.reporter != nil {
		if err := a.reporter.Send(ctx, report); err != nil {
			slog.Warn("report delivery failed", "evaluation_id", report.EvaluationID, "error", err)
		}
	}
	if a.push != nil && a.metrics != nil {
		if err := a.push(ctx, a.metrics); err != nil {
			slog.Warn("metrics push failed", "error", err)
		}
	}
}

func actionLabel(action string) string {
	if action == model.ActionNone {
		return "none"
	}
	return action
}
