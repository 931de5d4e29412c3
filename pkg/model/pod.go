package model

// PodPhase is the subset of pod phases the autoscaler distinguishes.
type PodPhase string

// Pod phases.
const (
	PodRunning PodPhase = "Running"
	PodPending PodPhase = "Pending"
	PodOther   PodPhase = "Other"
)

// ContainerRequest holds a container's declared resource requests.
// A nil field means the request was not declared; callers treat it as zero.
type ContainerRequest struct {
	Name   string  `json:"name"`
	CPU    *string `json:"cpu,omitempty"`
	Memory *string `json:"memory,omitempty"`
}

// SchedulingCondition is the latest PodScheduled condition of a pod.
type SchedulingCondition struct {
	Status  string `json:"status"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// MatchExpression mirrors one node selector requirement.
type MatchExpression struct {
	Key      string   `json:"key"`
	Operator string   `json:"operator"`
	Values   []string `json:"values,omitempty"`
}

// NodeSelectorTerm is one ORed term of a required node affinity.
type NodeSelectorTerm struct {
	Expressions []MatchExpression `json:"expressions,omitempty"`
}

// RequiredNodeAffinity is the requiredDuringSchedulingIgnoredDuringExecution
// part of a pod's node affinity.
type RequiredNodeAffinity struct {
	Terms []NodeSelectorTerm `json:"terms,omitempty"`
}

// PodSnapshot is the scheduling-relevant view of one pod.
type PodSnapshot struct {
	Name      string   `json:"name"`
	Namespace string   `json:"namespace"`
	NodeName  string   `json:"node_name,omitempty"`
	Phase     PodPhase `json:"phase"`

	Containers []ContainerRequest `json:"containers,omitempty"`

	NodeSelector     map[string]string     `json:"node_selector,omitempty"`
	RequiredAffinity *RequiredNodeAffinity `json:"required_affinity,omitempty"`

	// Scheduling is nil when the pod carries no PodScheduled condition.
	Scheduling *SchedulingCondition `json:"scheduling,omitempty"`
}
