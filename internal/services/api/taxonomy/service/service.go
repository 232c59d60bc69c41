// Package service implements taxonomy inspection and reload for the API
package service

import (
	"context"

	"leadrelay/internal/core/classify"
	"leadrelay/internal/core/taxonomy"
	perrs "leadrelay/internal/platform/errors"
	"leadrelay/internal/services/api/taxonomy/domain"
	poldom "leadrelay/internal/services/policy/domain"
)

// Service surfaces taxonomy operations for HTTP handlers
type Service interface {
	domain.ServicePort
}

// Svc implements Service over the shared classify engine
type Svc struct {
	engine *classify.Engine
	admin  poldom.AdminPort
	path   string
}

// New constructs the taxonomy service and panics on nil collaborators
func New(engine *classify.Engine, admin poldom.AdminPort, path string) *Svc {
	if engine == nil || admin == nil {
		panic("taxonomy api.Service requires an engine and an AdminPort")
	}
	return &Svc{engine: engine, admin: admin, path: path}
}

// Describe reports the pack currently behind the classifier
func (s *Svc) Describe(ctx context.Context) domain.PackView {
	return s.view(s.engine.Pack())
}

// Reload parses the pack from its source, bumps the taxonomy sequence and
// swaps the engine. The swap waits for the bump so this process and the
// relay workers converge on the same pack; a parse failure leaves the
// current pack in place
func (s *Svc) Reload(ctx context.Context) (domain.ReloadOutput, error) {
	pack, err := s.load()
	if err != nil {
		return domain.ReloadOutput{}, perrs.InvalidArgf("taxonomy reload: %v", err)
	}
	seq, err := s.admin.BumpTaxonomy(ctx)
	if err != nil {
		return domain.ReloadOutput{}, err
	}
	s.engine.Swap(pack)
	return domain.ReloadOutput{Seq: seq, Pack: s.view(pack)}, nil
}

func (s *Svc) load() (*taxonomy.Pack, error) {
	if s.path != "" {
		return taxonomy.LoadFile(s.path)
	}
	return taxonomy.Load()
}

func (s *Svc) view(p *taxonomy.Pack) domain.PackView {
	services := make([]domain.ServiceSummary, 0, len(p.Services))
	for _, svc := range p.Services {
		services = append(services, domain.ServiceSummary{
			Name:     svc.Name,
			Patterns: len(svc.Patterns),
		})
	}
	markers := 0
	for _, ms := range p.Urgency {
		markers += len(ms)
	}
	source := "embedded"
	if s.path != "" {
		source = s.path
	}
	return domain.PackView{
		Version:          p.Version,
		Scale:            p.Scale,
		Source:           source,
		Services:         services,
		NegativePatterns: len(p.Negative),
		UrgencyMarkers:   markers,
		Meta:             p.Meta,
	}
}
