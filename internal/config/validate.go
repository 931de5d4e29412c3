package config

import (
	"fmt"
	"net/url"

	"github.com/kubeadapt/spotinst-autoscaler/internal/errors"
	"github.com/kubeadapt/spotinst-autoscaler/internal/nodegroup"
)

// Validate checks that the Config contains valid values.
// Returns an error describing the first invalid field found.
func (c Config) Validate() error {
	if c.SpotinstToken == "" {
		return invalid("SPOTINST_TOKEN is required")
	}
	if c.ElastigroupID == "" {
		return invalid("ELASTIGROUP_ID is required")
	}
	if err := checkURL("SPOTINST_API_URL", c.SpotinstAPIURL); err != nil {
		return err
	}

	if c.KubeAPIEndpoint != "" && c.KubeToken == "" {
		return invalid("KUBE_TOKEN is required when KUBE_API_ENDPOINT is set")
	}

	for _, p := range []struct {
		name  string
		value int
	}{
		{"MAX_CPU_USAGE", c.MaxCPUUsage},
		{"MAX_MEMORY_USAGE", c.MaxMemoryUsage},
		{"MIN_CPU_USAGE", c.MinCPUUsage},
		{"MIN_MEMORY_USAGE", c.MinMemoryUsage},
	} {
		if p.value < 0 || p.value > 100 {
			return invalid(fmt.Sprintf("%s must be 0-100, got %d", p.name, p.value))
		}
	}
	if c.MinCPUUsage > c.MaxCPUUsage {
		return invalid(fmt.Sprintf("MIN_CPU_USAGE (%d) must not exceed MAX_CPU_USAGE (%d)", c.MinCPUUsage, c.MaxCPUUsage))
	}
	if c.MinMemoryUsage > c.MaxMemoryUsage {
		return invalid(fmt.Sprintf("MIN_MEMORY_USAGE (%d) must not exceed MAX_MEMORY_USAGE (%d)", c.MinMemoryUsage, c.MaxMemoryUsage))
	}

	if c.SecondsToCheck < 0 {
		return invalid(fmt.Sprintf("SECONDS_TO_CHECK must be >= 0, got %v", c.SecondsToCheck))
	}
	if c.KubeRequestTimeout <= 0 {
		return invalid(fmt.Sprintf("KUBE_REQUEST_TIMEOUT must be > 0, got %v", c.KubeRequestTimeout))
	}
	if c.SpotinstRequestTimeout <= 0 {
		return invalid(fmt.Sprintf("SPOTINST_REQUEST_TIMEOUT must be > 0, got %v", c.SpotinstRequestTimeout))
	}

	if c.MinNodeCount < 0 {
		return invalid(fmt.Sprintf("MIN_NODE_COUNT must be >= 0, got %d", c.MinNodeCount))
	}
	if c.MinNodeCount > c.MaxNodeCount {
		return invalid(fmt.Sprintf("MIN_NODE_COUNT (%d) must not exceed MAX_NODE_COUNT (%d)", c.MinNodeCount, c.MaxNodeCount))
	}
	if c.ScaleUpCount < 1 {
		return invalid(fmt.Sprintf("SCALE_UP_COUNT must be >= 1, got %d", c.ScaleUpCount))
	}
	if c.ScaleDownCount < 1 {
		return invalid(fmt.Sprintf("SCALE_DOWN_COUNT must be >= 1, got %d", c.ScaleDownCount))
	}

	if _, err := nodegroup.Parse(c.NodeSelectorLabel); err != nil {
		return errors.New(errors.ErrMalformedFilter, "config", "NODE_SELECTOR_LABEL", err)
	}

	if c.PushgatewayURL != "" {
		if err := checkURL("PUSHGATEWAY_URL", c.PushgatewayURL); err != nil {
			return err
		}
	}
	if c.ReportURL != "" {
		if err := checkURL("REPORT_URL", c.ReportURL); err != nil {
			return err
		}
	}
	if c.ReportRequestTimeout <= 0 {
		return invalid(fmt.Sprintf("REPORT_REQUEST_TIMEOUT must be > 0, got %v", c.ReportRequestTimeout))
	}
	if c.ReportMaxRetries < 0 {
		return invalid(fmt.Sprintf("REPORT_MAX_RETRIES must be >= 0, got %d", c.ReportMaxRetries))
	}

	return nil
}

func invalid(msg string) error {
	return errors.New(errors.ErrInvalidConfig, "config", msg, nil)
}

func checkURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid(fmt.Sprintf("%s must be an http(s) URL, got %q", name, raw))
	}
	return nil
}
