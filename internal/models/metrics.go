package models

import "time"

// MetricsSnapshot summarises process counters for the readiness payload.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	StoreCallCount           uint64    `json:"store_call_count"`
	AverageStoreCallMs       float64   `json:"average_store_call_ms"`
	RegistrationsTotal       uint64    `json:"registrations_total"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
