// Package service scores texts for the classify API
package service

import (
	"context"

	"leadrelay/internal/core/classify"
	"leadrelay/internal/services/api/classify/domain"
)

// Service surfaces classification for HTTP handlers
type Service interface {
	domain.ServicePort
}

// Svc implements Service over the shared classify engine
type Svc struct {
	engine *classify.Engine
}

// New constructs the classify service and panics on a nil engine
func New(engine *classify.Engine) *Svc {
	if engine == nil {
		panic("classify api.Service requires a non nil engine")
	}
	return &Svc{engine: engine}
}

// Classify scores one text against the live pack.
// The result is deterministic for a given text and pack
func (s *Svc) Classify(ctx context.Context, in domain.ClassifyInput) domain.ClassifyView {
	res := s.engine.Classify(in.Text)

	var secondary []domain.CandidateView
	if len(res.Secondary) > 0 {
		secondary = make([]domain.CandidateView, 0, len(res.Secondary))
		for _, c := range res.Secondary {
			secondary = append(secondary, domain.CandidateView{
				Service:    c.Service,
				Confidence: c.Confidence,
			})
		}
	}

	return domain.ClassifyView{
		Matched:         res.Matched(),
		Service:         res.Service,
		Confidence:      res.Confidence,
		Urgency:         res.Urgency,
		Language:        string(res.Language),
		Secondary:       secondary,
		TaxonomyVersion: res.TaxonomyVersion,
	}
}
