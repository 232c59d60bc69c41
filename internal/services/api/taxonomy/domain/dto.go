// Package domain defines DTO and port types for the taxonomy API
package domain

// ServiceSummary counts the patterns voting for one service
type ServiceSummary struct {
	Name     string `json:"name" example:"assignments"`
	Patterns int    `json:"patterns" example:"42"`
}

// PackView describes the taxonomy pack currently behind the classifier
type PackView struct {
	Version          int              `json:"version" example:"1"`
	Scale            float64          `json:"scale" example:"1.0"`
	Source           string           `json:"source" example:"embedded"`
	Services         []ServiceSummary `json:"services"`
	NegativePatterns int              `json:"negative_patterns" example:"7"`
	UrgencyMarkers   int              `json:"urgency_markers" example:"12"`
	Meta             map[string]any   `json:"meta,omitempty"`
}

// ReloadOutput reports the outcome of a taxonomy reload
type ReloadOutput struct {
	// Seq is the new taxonomy sequence; relay workers pick it up on their
	// next policy sync and swap to the same pack
	Seq  int64    `json:"seq" example:"4"`
	Pack PackView `json:"pack"`
}
