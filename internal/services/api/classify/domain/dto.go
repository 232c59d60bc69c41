// Package domain defines DTO and port types for the classify API
package domain

import "context"

// ClassifyInput carries one text to score
type ClassifyInput struct {
	Text string `json:"text" validate:"required,min=1,max=10000" example:"need help with my homework assignment due tomorrow"`
}

// CandidateView is one scored service
type CandidateView struct {
	Service    string `json:"service" example:"assignments"`
	Confidence int    `json:"confidence" example:"85"`
}

// ClassifyView is the classification outcome for one text
type ClassifyView struct {
	Matched         bool            `json:"matched" example:"true"`
	Service         string          `json:"service,omitempty" example:"assignments"`
	Confidence      int             `json:"confidence" example:"85"`
	Urgency         int             `json:"urgency" example:"4"`
	Language        string          `json:"language,omitempty" example:"latin"`
	Secondary       []CandidateView `json:"secondary,omitempty"`
	TaxonomyVersion int             `json:"taxonomy_version" example:"1"`
}

// ServicePort scores texts against the live taxonomy
type ServicePort interface {
	Classify(ctx context.Context, in ClassifyInput) ClassifyView
}
