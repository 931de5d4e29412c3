package model

// Action labels recorded after a decision has been applied.
const (
	ActionScaledUp   = "scaled_up"
	ActionScaledDown = "scaled_down"
	ActionNone       = ""
)

// EvaluationReport summarizes one evaluation pass and, when a resize was
// attempted, its outcome.
type EvaluationReport struct {
	EvaluationID  string `json:"evaluation_id"`
	Timestamp     int64  `json:"timestamp"` // Unix milliseconds
	ElastigroupID string `json:"elastigroup_id"`
	NodeGroup     string `json:"node_group,omitempty"`

	Decision ScaleDecision `json:"decision"`
	Reason   string        `json:"reason"`

	Starved     bool               `json:"starved"`
	PendingPods int                `json:"pending_pods"`
	Utilization *UtilizationResult `json:"utilization,omitempty"`
	Totals      *UsageTotals       `json:"totals,omitempty"`

	Action        string `json:"action,omitempty"`
	InstanceCount *int   `json:"instance_count,omitempty"`
	TargetCount   *int   `json:"target_count,omitempty"`
	DryRun        bool   `json:"dry_run"`
	DurationMs    int64  `json:"duration_ms"`
}
