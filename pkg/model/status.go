package model

import "time"

var (
	// StatusOK is the health status of a dependency that is reachable.
	StatusOK = "STATUS_OK"
	// StatusFail is the health status of a dependency that is not reachable.
	StatusFail = "STATUS_FAIL"
)

// Status is the health of one dependency (repository, signer, wallet).
type Status struct {
	Name      string    `json:"name,omitempty"`
	Healthy   bool      `json:"healthy,omitempty"`
	Status    string    `json:"status,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// ManyStatus is the aggregate health of every dependency an authority checks.
type ManyStatus []*Status

// Check returns the first unhealthy Status, or a synthetic healthy Status if
// every dependency passed.
func (s ManyStatus) Check() *Status {
	for _, status := range s {
		if status == nil {
			continue
		}
		if !status.Healthy {
			return status
		}
	}
	return &Status{
		Healthy:   true,
		Status:    StatusOK,
		Timestamp: time.Now(),
	}
}
