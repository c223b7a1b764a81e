package models

// Readiness reports the outcome of the dependency checks behind /ready.
type Readiness struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Metrics MetricsSnapshot   `json:"metrics"`
}

// Ready reports whether every check passed.
func (r Readiness) Ready() bool {
	return r.Status == "ready"
}
