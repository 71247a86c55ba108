package dto

import "time"

// HealthStatus is the liveness payload.
type HealthStatus struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}

// ComponentHealth describes one dependency.
type ComponentHealth struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	URL      string `json:"url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// DetailedHealth is the dependency-aware health payload.
type DetailedHealth struct {
	Status    string          `json:"status"`
	Service   string          `json:"service"`
	Database  ComponentHealth `json:"database"`
	Cache     ComponentHealth `json:"cache"`
	Timestamp time.Time       `json:"timestamp"`
}
