package spotinst

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kubeadapt/spotinst-autoscaler/internal/config"
	"github.com/kubeadapt/spotinst-autoscaler/pkg/model"
)

// Fleet is the part of the Spotinst API the Scaler needs.
type Fleet interface {
	InstanceCount(ctx context.Context) (int, error)
	SetCapacity(ctx context.Context, capacity model.Capacity) error
}

// Result describes what Apply did to the group.
type Result struct {
	// Action is model.ActionScaledUp/ScaledDown when a capacity change was
	// sent, model.ActionNone otherwise.
	Action  string
	Current int
	Target  int
	// Skipped is set when the clamped target equals the current count.
	Skipped bool
	DryRun  bool
}

// Scaler turns scale decisions into Elastigroup capacity updates.
type Scaler struct {
	fleet     Fleet
	minNodes  int
	maxNodes  int
	upCount   int
	downCount int
	dryRun    bool
}

// NewScaler builds a Scaler with the bounds and steps from cfg.
func NewScaler(fleet Fleet, cfg *config.Config) *Scaler {
	return &Scaler{
		fleet:     fleet,
		minNodes:  cfg.MinNodeCount,
		maxNodes:  cfg.MaxNodeCount,
		upCount:   cfg.ScaleUpCount,
		downCount: cfg.ScaleDownCount,
		dryRun:    cfg.DryRun,
	}
}

// Apply executes decision. NoAction never touches the API.
func (s *Scaler) Apply(ctx context.Context, decision model.ScaleDecision) (Result, error) {
	switch decision {
	case model.ScaleUp:
		return s.ScaleUp(ctx, s.upCount)
	case model.ScaleDown:
		return s.ScaleDown(ctx, s.downCount)
	case model.NoAction:
		return Result{}, nil
	default:
		return Result{}, fmt.Errorf("spotinst: unknown decision %q", decision)
	}
}

// ScaleUp grows the group by count instances, up to the max node count.
func (s *Scaler) ScaleUp(ctx context.Context, count int) (Result, error) {
	return s.resize(ctx, count, model.ActionScaledUp)
}

// ScaleDown shrinks the group by count instances, down to the min node count.
func (s *Scaler) ScaleDown(ctx context.Context, count int) (Result, error) {
	return s.resize(ctx, -count, model.ActionScaledDown)
}

func (s *Scaler) resize(ctx context.Context, delta int, action string) (Result, error) {
	current, err := s.fleet.InstanceCount(ctx)
	if err != nil {
		return Result{}, err
	}

	res := Result{Current: current, Target: s.clamp(current + delta), DryRun: s.dryRun}
	if res.Target == current {
		res.Skipped = true
		slog.Info("elastigroup already at bound, skipping resize",
			"current", current, "min", s.minNodes, "max", s.maxNodes)
		return res, nil
	}
	if s.dryRun {
		slog.Info("dry run, not resizing elastigroup", "current", current, "target", res.Target)
		return res, nil
	}

	// Minimum and maximum are pinned to the target.
	capacity := model.Capacity{Target: res.Target, Minimum: res.Target, Maximum: res.Target}
	if err := s.fleet.SetCapacity(ctx, capacity); err != nil {
		return Result{}, err
	}
	res.Action = action
	slog.Info("elastigroup resized", "action", action, "from", current, "to", res.Target)
	return res, nil
}

func (s *Scaler) clamp(n int) int {
	return max(s.minNodes, min(n, s.maxNodes))
}
