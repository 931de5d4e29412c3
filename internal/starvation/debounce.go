package starvation

import (
	"context"
	"log/slog"
	"time"

	"github.com/kubeadapt/spotinst-autoscaler/internal/cluster"
	"github.com/kubeadapt/spotinst-autoscaler/internal/nodegroup"
	"github.com/kubeadapt/spotinst-autoscaler/pkg/model"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Debouncer samples pending pods twice, Interval apart, and reports
// starvation only when both samples show it.
type Debouncer struct {
	reader   cluster.Reader
	interval time.Duration
	sleep    SleepFunc
}

// NewDebouncer creates a Debouncer. A nil sleep uses a context-aware timer.
func NewDebouncer(reader cluster.Reader, interval time.Duration, sleep SleepFunc) *Debouncer {
	if sleep == nil {
		sleep = contextSleep
	}
	return &Debouncer{
		reader:   reader,
		interval: interval,
		sleep:    sleep,
	}
}

// Starved returns whether pending pods are resource-starved for filter and
// the pending count of the last sample taken. The second sample is skipped
// when the first one shows no starvation.
func (d *Debouncer) Starved(ctx context.Context, filter nodegroup.Filter) (bool, int, error) {
	first, err := d.sample(ctx)
	if err != nil {
		return false, 0, err
	}
	if !HasResourceStarvedPending(first, filter) {
		return false, len(first), nil
	}

	pod, _ := FirstStarved(first)
	slog.Info("resource-starved pending pod, re-checking",
		"pod", pod.Namespace+"/"+pod.Name,
		"message", pod.Scheduling.Message,
		"pending", len(first),
		"interval", d.interval,
	)

	if err := d.sleep(ctx, d.interval); err != nil {
		return false, len(first), err
	}

	second, err := d.sample(ctx)
	if err != nil {
		return false, 0, err
	}
	return HasResourceStarvedPending(second, filter), len(second), nil
}

// sample lists pending pods cluster-wide. Pending pods have no node yet, so
// the node group is applied through their placement constraints instead.
func (d *Debouncer) sample(ctx context.Context) ([]model.PodSnapshot, error) {
	return d.reader.ListPods(ctx, model.PodPending, nodegroup.Filter{})
}

func contextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
