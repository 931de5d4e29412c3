package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kubeadapt/spotinst-autoscaler/pkg/model"
)

// Metrics holds all Prometheus metrics for autoscaler self-monitoring.
// It uses a custom registry to avoid polluting the global default.
type Metrics struct {
	Registry *prometheus.Registry

	// Evaluation metrics
	EvaluationDuration prometheus.Histogram
	DecisionsTotal     *prometheus.CounterVec
	UtilizationPercent *prometheus.GaugeVec
	Starved            prometheus.Gauge
	PendingPods        prometheus.Gauge
	GroupNodes         prometheus.Gauge

	// Kubernetes API metrics
	KubeAPIDuration      *prometheus.HistogramVec
	KubeAPIRequestsTotal *prometheus.CounterVec

	// Spotinst metrics
	SpotinstRequestsTotal *prometheus.CounterVec
	ScaleActionsTotal     *prometheus.CounterVec
	InstanceCount         prometheus.Gauge

	// Report transport metrics
	ReportSendTotal     *prometheus.CounterVec
	TransportRetries    prometheus.Counter
	CompressionRatio    prometheus.Gauge
	CompressionDuration prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with all Prometheus metrics
// registered on a custom registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,

		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "spotinst_autoscaler_evaluation_duration_seconds",
			Help:    "Duration of evaluation passes in seconds, including the pending debounce.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spotinst_autoscaler_decisions_total",
			Help: "Total number of scale decisions by outcome.",
		}, []string{"decision"}),
		UtilizationPercent: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "spotinst_autoscaler_utilization_percent",
			Help: "Last computed utilization percent of the node group.",
		}, []string{"resource"}),
		Starved: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spotinst_autoscaler_starved",
			Help: "Whether the last evaluation found resource-starved pending pods (1 = starved).",
		}),
		PendingPods: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spotinst_autoscaler_pending_pods",
			Help: "Number of pending pods seen in the last evaluation.",
		}),
		GroupNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spotinst_autoscaler_group_nodes",
			Help: "Number of nodes in the node group at the last utilization pass.",
		}),

		KubeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spotinst_autoscaler_kube_api_duration_seconds",
			Help:    "Duration of Kubernetes API list calls in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"resource"}),
		KubeAPIRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spotinst_autoscaler_kube_api_requests_total",
			Help: "Total number of Kubernetes API list calls.",
		}, []string{"resource", "status"}),

		SpotinstRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spotinst_autoscaler_spotinst_requests_total",
			Help: "Total number of Spotinst API requests.",
		}, []string{"method", "status"}),
		ScaleActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spotinst_autoscaler_scale_actions_total",
			Help: "Total number of capacity changes applied to the Elastigroup.",
		}, []string{"action"}),
		InstanceCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spotinst_autoscaler_instance_count",
			Help: "Healthy instance count reported by Spotinst at the last resize.",
		}),

		ReportSendTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spotinst_autoscaler_report_send_total",
			Help: "Total number of evaluation report send attempts.",
		}, []string{"status"}),
		TransportRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spotinst_autoscaler_transport_retries_total",
			Help: "Total number of report transport retry attempts.",
		}),
		CompressionRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spotinst_autoscaler_compression_ratio",
			Help: "Compression ratio of the last report (compressed/original).",
		}),
		CompressionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "spotinst_autoscaler_compression_duration_seconds",
			Help:    "Duration of report compression in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.EvaluationDuration,
		m.DecisionsTotal,
		m.UtilizationPercent,
		m.Starved,
		m.PendingPods,
		m.GroupNodes,
		m.KubeAPIDuration,
		m.KubeAPIRequestsTotal,
		m.SpotinstRequestsTotal,
		m.ScaleActionsTotal,
		m.InstanceCount,
		m.ReportSendTotal,
		m.TransportRetries,
		m.CompressionRatio,
		m.CompressionDuration,
	)

	return m
}

// Record copies the outcome of an evaluation into the gauges and counters.
func (m *Metrics) Record(r *model.EvaluationReport) {
	if m == nil || r == nil {
		return
	}

	m.EvaluationDuration.Observe(float64(r.DurationMs) / 1000)
	m.DecisionsTotal.WithLabelValues(string(r.Decision)).Inc()
	m.PendingPods.Set(float64(r.PendingPods))
	if r.Starved {
		m.Starved.Set(1)
	} else {
		m.Starved.Set(0)
	}

	if r.Utilization != nil {
		m.UtilizationPercent.WithLabelValues("cpu").Set(float64(r.Utilization.CPUPercent))
		m.UtilizationPercent.WithLabelValues("memory").Set(float64(r.Utilization.MemoryPercent))
	}
	if r.Totals != nil {
		m.GroupNodes.Set(float64(r.Totals.NodeCount))
	}

	if r.InstanceCount != nil {
		m.InstanceCount.Set(float64(*r.InstanceCount))
	}
	if r.Action != model.ActionNone {
		m.ScaleActionsTotal.WithLabelValues(r.Action).Inc()
	}
}
