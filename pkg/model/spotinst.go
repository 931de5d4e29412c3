package model

// ElastigroupHealthResponse is the body of
// GET /aws/ec2/group/{id}/instanceHealthiness.
type ElastigroupHealthResponse struct {
	Response struct {
		Count *int             `json:"count,omitempty"`
		Items []InstanceHealth `json:"items,omitempty"`
	} `json:"response"`
}

// InstanceHealth describes one instance in an Elastigroup.
type InstanceHealth struct {
	InstanceID   string `json:"instanceId"`
	HealthStatus string `json:"healthStatus"`
}

// Capacity is the Elastigroup capacity block.
type Capacity struct {
	Target  int `json:"target"`
	Minimum int `json:"minimum"`
	Maximum int `json:"maximum"`
}

// CapacityUpdateRequest is the body of PUT /aws/ec2/group/{id}.
type CapacityUpdateRequest struct {
	Group struct {
		Capacity Capacity `json:"capacity"`
	} `json:"group"`
}

// SpotinstErrorResponse is returned by the Spotinst API on rejection.
type SpotinstErrorResponse struct {
	Response struct {
		Errors []struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"errors,omitempty"`
	} `json:"response"`
}
