// Package module wires the records service and exposes its ports
package module

import (
	"leadrelay/internal/modkit"
	"leadrelay/internal/modkit/httpkit"
	"leadrelay/internal/services/records/repo"
	"leadrelay/internal/services/records/service"
)

// Module defines the records module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the records module with its ports
func New(deps modkit.Deps, overrides Options) *Module {
	// Load defaults, then apply non-zero overrides
	opts := FromConfig(deps.Cfg)

	if overrides.DedupTTL != 0 {
		opts.DedupTTL = overrides.DedupTTL
	}

	svc := service.New(repo.NewCH(deps.CH), deps.RDS, service.Config{
		DedupTTL: opts.DedupTTL,
	})

	m := &Module{deps: deps}
	m.ports = Ports{
		Writer: svc,
		Dedup:  svc,
	}
	return m
}

// Ports returns the module ports (Writer, Dedup)
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return "records" }

// Prefix returns the module config prefix (none for worker-only service)
func (m *Module) Prefix() string { return "" }

// MountRoutes returns no HTTP routes
func (m *Module) MountRoutes(_ httpkit.Router) {}
