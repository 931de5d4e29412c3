package config

import "os"

// ConnectionMethod selects how the Kubernetes client authenticates.
type ConnectionMethod string

// Connection methods, in priority order.
const (
	ConnectionAPI        ConnectionMethod = "api"
	ConnectionKubeconfig ConnectionMethod = "kube_config"
	ConnectionInCluster  ConnectionMethod = "in_cluster"
)

// DecideConnectionMethod picks api when an endpoint is configured, then
// kube_config when the kubeconfig file exists, and in_cluster otherwise.
func DecideConnectionMethod(c Config) ConnectionMethod {
	if c.KubeAPIEndpoint != "" {
		return ConnectionAPI
	}
	if c.KubeconfigPath != "" && fileExists(c.KubeconfigPath) {
		return ConnectionKubeconfig
	}
	return ConnectionInCluster
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
