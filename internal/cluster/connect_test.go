package cluster

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"k8s.io/client-go/rest"

	"github.com/kubeadapt/spotinst-autoscaler/internal/config"
)

const testKubeconfig = `apiVersion: v1
kind: Config
clusters:
- name: dev
  cluster:
    server: https://dev.example.com:6443
- name: prod
  cluster:
    server: https://prod.example.com:6443
users:
- name: admin
  user:
    token: secret
contexts:
- name: dev
  context:
    cluster: dev
    user: admin
- name: prod
  context:
    cluster: prod
    user: admin
current-context: dev
`

func TestRestConfig_API(t *testing.T) {
	cfg := config.Config{
		KubeAPIEndpoint:    "https://10.0.0.1:6443",
		KubeToken:          "token",
		KubeRequestTimeout: 7 * time.Second,
	}

	restCfg, method, err := RestConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, config.ConnectionAPI, method)
	assert.Equal(t, "https://10.0.0.1:6443", restCfg.Host)
	assert.Equal(t, "token", restCfg.BearerToken)
	assert.True(t, restCfg.Insecure)
	assert.Equal(t, 7*time.Second, restCfg.Timeout)
}

func TestRestConfig_KubeconfigContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(testKubeconfig), 0o600))

	restCfg, method, err := RestConfig(config.Config{KubeconfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, config.ConnectionKubeconfig, method)
	assert.Equal(t, "https://dev.example.com:6443", restCfg.Host)

	restCfg, _, err = RestConfig(config.Config{KubeconfigPath: path, KubeconfigContext: "prod"})
	require.NoError(t, err)
	assert.Equal(t, "https://prod.example.com:6443", restCfg.Host)
}

func TestRestConfig_UnknownContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(testKubeconfig), 0o600))

	_, _, err := RestConfig(config.Config{KubeconfigPath: path, KubeconfigContext: "staging"})
	require.Error(t, err)
}

func TestNewClients(t *testing.T) {
	clients, err := NewClients(&rest.Config{Host: "https://10.0.0.1:6443"})
	require.NoError(t, err)
	assert.NotNil(t, clients.Kube)
	assert.NotNil(t, clients.Metrics)
}
