package model

// ScaleDecision is the single outcome of one evaluation.
type ScaleDecision string

// Scale decisions.
const (
	ScaleUp   ScaleDecision = "scale_up"
	ScaleDown ScaleDecision = "scale_down"
	NoAction  ScaleDecision = "no_action"
)

// UtilizationResult holds floor-truncated percentages of
// max(used, requested) over allocatable capacity.
type UtilizationResult struct {
	CPUPercent    int `json:"cpu_percent"`
	MemoryPercent int `json:"memory_percent"`
}

// UsageTotals are the normalized sums behind a UtilizationResult.
// CPU is in cores, memory in bytes.
type UsageTotals struct {
	AllocatableCPU    float64 `json:"allocatable_cpu"`
	AllocatableMemory float64 `json:"allocatable_memory"`
	RequestedCPU      float64 `json:"requested_cpu"`
	RequestedMemory   float64 `json:"requested_memory"`
	UsedCPU           float64 `json:"used_cpu"`
	UsedMemory        float64 `json:"used_memory"`
	NodeCount         int     `json:"node_count"`
	RunningPodCount   int     `json:"running_pod_count"`
}
