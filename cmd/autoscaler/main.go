package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/KimMachineGun/automemlimit"
	_ "go.uber.org/automaxprocs"

	"github.com/kubeadapt/spotinst-autoscaler/internal/agent"
	"github.com/kubeadapt/spotinst-autoscaler/internal/cluster"
	"github.com/kubeadapt/spotinst-autoscaler/internal/config"
	"github.com/kubeadapt/spotinst-autoscaler/internal/decision"
	"github.com/kubeadapt/spotinst-autoscaler/internal/discovery"
	"github.com/kubeadapt/spotinst-autoscaler/internal/errors"
	"github.com/kubeadapt/spotinst-autoscaler/internal/nodegroup"
	"github.com/kubeadapt/spotinst-autoscaler/internal/observability"
	"github.com/kubeadapt/spotinst-autoscaler/internal/spotinst"
	"github.com/kubeadapt/spotinst-autoscaler/internal/starvation"
	"github.com/kubeadapt/spotinst-autoscaler/internal/transport"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	err := run()
	if err != nil {
		slog.Error("spotinst-autoscaler failed", "error", err, "code", errors.CodeOf(err))
	}
	os.Exit(errors.ExitCode(err))
}

func run() error {
	// 1. Load and validate config.
	cfg := config.Load()
	cfg.Version = version
	if err := cfg.Validate(); err != nil {
		return err
	}
	filter, err := nodegroup.Parse(cfg.NodeSelectorLabel)
	if err != nil {
		return errors.New(errors.ErrMalformedFilter, "config", "NODE_SELECTOR_LABEL", err)
	}

	// 2. Create context with signal handling.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			slog.Info("shutdown signal received", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	slog.Info("spotinst-autoscaler starting",
		"version", cfg.Version,
		"elastigroup_id", cfg.ElastigroupID,
		"node_group", filter.String(),
		"dry_run", cfg.DryRun,
	)

	// 3. Build Kubernetes clients.
	restCfg, method, err := cluster.RestConfig(cfg)
	if err != nil {
		return err
	}
	slog.Info("kubernetes connection", "method", method, "host", restCfg.Host)

	clients, err := cluster.NewClients(restCfg)
	if err != nil {
		return err
	}

	// 4. Preflight: metrics API and RBAC.
	preflightCtx, preflightCancel := context.WithTimeout(ctx, cfg.KubeRequestTimeout)
	caps, err := discovery.Preflight(preflightCtx, clients.Kube, clients.Kube.Discovery())
	preflightCancel()
	if err != nil {
		return err
	}
	slog.Info("cluster capabilities detected",
		"metrics_server", caps.MetricsServer,
		"provider", caps.Provider,
	)

	// 5. Wire the evaluation.
	metrics := observability.NewMetrics()
	reader := cluster.NewKubeReader(clients.Kube, clients.Metrics, cfg.KubeRequestTimeout, metrics)
	debouncer := starvation.NewDebouncer(reader, cfg.SecondsToCheck, nil)
	evaluator := decision.NewEvaluator(reader, debouncer, filter, decision.ThresholdsFromConfig(&cfg), cfg.ElastigroupID)
	scaler := spotinst.NewScaler(spotinst.NewClient(&cfg, metrics), &cfg)

	var opts []agent.Option
	if cfg.ReportURL != "" {
		opts = append(opts, agent.WithReporter(transport.NewReportClient(&cfg, metrics)))
	}
	if cfg.PushgatewayURL != "" {
		pushClient := transport.NewPushClient(&cfg)
		opts = append(opts, agent.WithPush(func(ctx context.Context, m *observability.Metrics) error {
			return observability.Push(ctx, pushClient, cfg.PushgatewayURL, cfg.ElastigroupID, m)
		}))
	}

	// 6. One pass, then exit.
	_, err = agent.NewAgent(evaluator, scaler, metrics, opts...).RunOnce(ctx)
	return err
}
