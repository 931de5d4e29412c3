package config

import (
	"os"
	"strconv"
	"time"

	"k8s.io/client-go/tools/clientcmd"
)

// Config holds all autoscaler configuration values.
type Config struct {
	// Kubernetes connection
	KubeAPIEndpoint    string        // KUBE_API_ENDPOINT, selects the "api" method when set
	KubeToken          string        // KUBE_TOKEN, bearer token for the "api" method
	KubeconfigPath     string        // KUBECONFIG_PATH, default: ~/.kube/config
	KubeconfigContext  string        // KUBECONFIG_CONTEXT
	KubeRequestTimeout time.Duration // KUBE_REQUEST_TIMEOUT, default: 10s

	// Decision thresholds (percent)
	MaxCPUUsage    int // MAX_CPU_USAGE, default: 80
	MaxMemoryUsage int // MAX_MEMORY_USAGE, default: 80
	MinCPUUsage    int // MIN_CPU_USAGE, default: 50
	MinMemoryUsage int // MIN_MEMORY_USAGE, default: 50

	// Pending pods
	SecondsToCheck     time.Duration // SECONDS_TO_CHECK, default: 10s
	ScaleOnPendingPods bool          // SCALE_ON_PENDING_PODS, default: true

	ScaleUpActive   bool // SCALE_UP_ACTIVE, default: true
	ScaleDownActive bool // SCALE_DOWN_ACTIVE, default: true

	NodeSelectorLabel string // NODE_SELECTOR_LABEL, optional key=value

	// Spotinst
	SpotinstToken          string        // SPOTINST_TOKEN, required
	SpotinstAccount        string        // SPOTINST_ACCOUNT
	ElastigroupID          string        // ELASTIGROUP_ID, required
	SpotinstAPIURL         string        // SPOTINST_API_URL, default: https://api.spotinst.io
	SpotinstRequestTimeout time.Duration // SPOTINST_REQUEST_TIMEOUT, default: 15s
	MinNodeCount           int           // MIN_NODE_COUNT, default: 2
	MaxNodeCount           int           // MAX_NODE_COUNT, default: 100
	ScaleUpCount           int           // SCALE_UP_COUNT, default: 1
	ScaleDownCount         int           // SCALE_DOWN_COUNT, default: 1
	DryRun                 bool          // DRY_RUN, default: false

	// Reporting
	PushgatewayURL   string // PUSHGATEWAY_URL
	ReportURL        string // REPORT_URL
	ReportAPIKey     string // REPORT_API_KEY
	ReportMaxRetries int    // REPORT_MAX_RETRIES, default: 2

	ReportRequestTimeout time.Duration // REPORT_REQUEST_TIMEOUT, default: 30s

	Version string
}

// Load reads configuration from environment variables and returns a Config
// with defaults applied for any unset values.
func Load() Config {
	return Config{
		KubeAPIEndpoint:    os.Getenv("KUBE_API_ENDPOINT"),
		KubeToken:          os.Getenv("KUBE_TOKEN"),
		KubeconfigPath:     envOrDefault("KUBECONFIG_PATH", clientcmd.RecommendedHomeFile),
		KubeconfigContext:  os.Getenv("KUBECONFIG_CONTEXT"),
		KubeRequestTimeout: parseDuration("KUBE_REQUEST_TIMEOUT", 10*time.Second),

		MaxCPUUsage:    parseInt("MAX_CPU_USAGE", 80),
		MaxMemoryUsage: parseInt("MAX_MEMORY_USAGE", 80),
		MinCPUUsage:    parseInt("MIN_CPU_USAGE", 50),
		MinMemoryUsage: parseInt("MIN_MEMORY_USAGE", 50),

		SecondsToCheck:     parseDuration("SECONDS_TO_CHECK", 10*time.Second),
		ScaleOnPendingPods: parseBool("SCALE_ON_PENDING_PODS", true),
		ScaleUpActive:      parseBool("SCALE_UP_ACTIVE", true),
		ScaleDownActive:    parseBool("SCALE_DOWN_ACTIVE", true),

		NodeSelectorLabel: os.Getenv("NODE_SELECTOR_LABEL"),

		SpotinstToken:          os.Getenv("SPOTINST_TOKEN"),
		SpotinstAccount:        os.Getenv("SPOTINST_ACCOUNT"),
		ElastigroupID:          os.Getenv("ELASTIGROUP_ID"),
		SpotinstAPIURL:         envOrDefault("SPOTINST_API_URL", "https://api.spotinst.io"),
		SpotinstRequestTimeout: parseDuration("SPOTINST_REQUEST_TIMEOUT", 15*time.Second),
		MinNodeCount:           parseInt("MIN_NODE_COUNT", 2),
		MaxNodeCount:           parseInt("MAX_NODE_COUNT", 100),
		ScaleUpCount:           parseInt("SCALE_UP_COUNT", 1),
		ScaleDownCount:         parseInt("SCALE_DOWN_COUNT", 1),
		DryRun:                 parseBool("DRY_RUN", false),

		PushgatewayURL:   os.Getenv("PUSHGATEWAY_URL"),
		ReportURL:        os.Getenv("REPORT_URL"),
		ReportAPIKey:     os.Getenv("REPORT_API_KEY"),
		ReportMaxRetries: parseInt("REPORT_MAX_RETRIES", 2),

		ReportRequestTimeout: parseDuration("REPORT_REQUEST_TIMEOUT", 30*time.Second),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// parseDuration tries time.ParseDuration first, then falls back to treating
// the value as integer seconds.
func parseDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(v)
	if err == nil {
		return d
	}

	// Fallback: treat as integer seconds
	secs, err := strconv.Atoi(v)
	if err == nil {
		return time.Duration(secs) * time.Second
	}

	return defaultVal
}

func parseBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func parseInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}
