package cluster

import (
	"log/slog"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	metricsclientset "k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/kubeadapt/spotinst-autoscaler/internal/config"
	"github.com/kubeadapt/spotinst-autoscaler/internal/errors"
)

// RestConfig builds a Kubernetes REST config for the connection method
// chosen by config.DecideConnectionMethod.
func RestConfig(cfg config.Config) (*rest.Config, config.ConnectionMethod, error) {
	method := config.DecideConnectionMethod(cfg)

	var (
		restCfg *rest.Config
		err     error
	)
	switch method {
	case config.ConnectionAPI:
		restCfg = &rest.Config{
			Host:        cfg.KubeAPIEndpoint,
			BearerToken: cfg.KubeToken,
			TLSClientConfig: rest.TLSClientConfig{
				Insecure: true,
			},
		}
	case config.ConnectionKubeconfig:
		restCfg, err = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
			&clientcmd.ClientConfigLoadingRules{ExplicitPath: cfg.KubeconfigPath},
			&clientcmd.ConfigOverrides{CurrentContext: cfg.KubeconfigContext},
		).ClientConfig()
	default:
		restCfg, err = rest.InClusterConfig()
	}
	if err != nil {
		return nil, method, errors.New(errors.ErrInvalidConfig, component, "build kubernetes config ("+string(method)+")", err)
	}

	restCfg.Timeout = cfg.KubeRequestTimeout
	slog.Info("kubernetes connection configured", "method", method, "host", restCfg.Host)
	return restCfg, method, nil
}

// Clients bundles the typed clients built from one REST config.
type Clients struct {
	Kube    kubernetes.Interface
	Metrics MetricsAPI
}

// NewClients creates the core and metrics.k8s.io clients for restCfg.
func NewClients(restCfg *rest.Config) (*Clients, error) {
	kubeClient, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		return nil, errors.New(errors.ErrInvalidConfig, component, "create kubernetes client", err)
	}
	metricsClient, err := metricsclientset.NewForConfig(restCfg)
	if err != nil {
		return nil, errors.New(errors.ErrInvalidConfig, component, "create metrics client", err)
	}
	return &Clients{
		Kube:    kubeClient,
		Metrics: NewMetricsAPI(metricsClient.MetricsV1beta1()),
	}, nil
}
