// Package module wires the relay worker from the other modules' ports
package module

import (
	"leadrelay/internal/core/classify"
	"leadrelay/internal/core/taxonomy"
	"leadrelay/internal/modkit"
	"leadrelay/internal/modkit/httpkit"
	reldom "leadrelay/internal/services/relay/domain"
	"leadrelay/internal/services/relay/service"
)

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the relay module. Collaborator ports arrive via
// modkit.WithPorts(relay/domain.Ports)
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("relay"),
	}, opts...)...)

	// Basic guardrails against incorrect wiring
	ports, ok := b.Ports.(reldom.Ports)
	if !ok {
		panic("relay module: expected WithPorts(relay/domain.Ports)")
	}
	if ports.Pool == nil || ports.Sync == nil {
		panic("relay module: Ports missing Pool or Sync")
	}
	if ports.Policy == nil || ports.Admin == nil || ports.Senders == nil {
		panic("relay module: Ports missing Policy, Admin or Senders")
	}
	if ports.Writer == nil || ports.Dedup == nil || ports.Session == nil {
		panic("relay module: Ports missing Writer, Dedup or Session")
	}

	// Merge config + overrides
	cfg := FromConfig(deps.Cfg)
	if overrides.MaxRetries != 0 {
		cfg.MaxRetries = overrides.MaxRetries
	}
	if overrides.Workers != 0 {
		cfg.Workers = overrides.Workers
	}
	if overrides.QueueDepth != 0 {
		cfg.QueueDepth = overrides.QueueDepth
	}
	if overrides.RetryBackoff != 0 {
		cfg.RetryBackoff = overrides.RetryBackoff
	}
	if overrides.RedialWait != 0 {
		cfg.RedialWait = overrides.RedialWait
	}
	if overrides.SyncEvery != 0 {
		cfg.SyncEvery = overrides.SyncEvery
	}
	if overrides.FlushEvery != 0 {
		cfg.FlushEvery = overrides.FlushEvery
	}
	if overrides.ReconcileEvery != 0 {
		cfg.ReconcileEvery = overrides.ReconcileEvery
	}
	if overrides.DrainTimeout != 0 {
		cfg.DrainTimeout = overrides.DrainTimeout
	}
	if overrides.WriteTimeout != 0 {
		cfg.WriteTimeout = overrides.WriteTimeout
	}
	if overrides.TaxonomyPath != "" {
		cfg.TaxonomyPath = overrides.TaxonomyPath
	}

	// Initial taxonomy pack; reloads ride the policy taxonomy sequence
	var (
		pack *taxonomy.Pack
		err  error
	)
	if cfg.TaxonomyPath != "" {
		pack, err = taxonomy.LoadFile(cfg.TaxonomyPath)
	} else {
		pack, err = taxonomy.Load()
	}
	if err != nil {
		panic(err)
	}

	svc := service.New(service.Config{
		MaxRetries:     cfg.MaxRetries,
		Workers:        cfg.Workers,
		QueueDepth:     cfg.QueueDepth,
		RetryBackoff:   cfg.RetryBackoff,
		RedialWait:     cfg.RedialWait,
		SyncEvery:      cfg.SyncEvery,
		FlushEvery:     cfg.FlushEvery,
		ReconcileEvery: cfg.ReconcileEvery,
		DrainTimeout:   cfg.DrainTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		TaxonomyPath:   cfg.TaxonomyPath,
	}, ports, classify.New(pack))

	m := &Module{deps: deps}
	m.ports = Ports{Worker: svc}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "relay" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(_ httpkit.Router) {}
