package model

// ResourceStrings holds raw cpu/memory quantity strings exactly as the
// cluster API returned them (e.g. "500m", "128Mi"). An empty string means
// the resource key was not present.
type ResourceStrings struct {
	CPU    string `json:"cpu"`
	Memory string `json:"memory"`
}

// NodeSnapshot is one node's allocatable capacity as read during a single
// poll cycle. It is never mutated after conversion.
type NodeSnapshot struct {
	Name        string            `json:"name"`
	Labels      map[string]string `json:"labels,omitempty"`
	Allocatable ResourceStrings   `json:"allocatable"`
}
