// Package module wires the account pool and registry and exposes their ports
package module

import (
	"leadrelay/internal/modkit"
	"leadrelay/internal/modkit/httpkit"
	"leadrelay/internal/services/accounts/repo"
	"leadrelay/internal/services/accounts/service"
)

// Module defines the accounts worker module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the accounts module with its ports
func New(deps modkit.Deps, overrides Options) *Module {
	// Load defaults, then apply non-zero overrides
	opts := FromConfig(deps.Cfg)

	if overrides.HourlyLimit != 0 {
		opts.HourlyLimit = overrides.HourlyLimit
	}
	if overrides.FloodWaitMultiplier != 0 {
		opts.FloodWaitMultiplier = overrides.FloodWaitMultiplier
	}
	if overrides.ErrorCeiling != 0 {
		opts.ErrorCeiling = overrides.ErrorCeiling
	}
	if overrides.Limits != nil {
		opts.Limits = overrides.Limits
	}

	pool := service.NewPool(service.Config{
		HourlyLimit:         opts.HourlyLimit,
		FloodWaitMultiplier: opts.FloodWaitMultiplier,
		ErrorCeiling:        opts.ErrorCeiling,
	}, opts.Limits)
	svc := service.New(deps.PG, repo.NewPG(), pool)

	m := &Module{deps: deps}
	m.ports = Ports{
		Pool:     pool,
		Registry: svc,
		Sync:     svc,
	}
	return m
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return "accounts" }

// Prefix returns the module route prefix (none, routes live in the api composition)
func (m *Module) Prefix() string { return "" }

// MountRoutes returns no HTTP routes
func (m *Module) MountRoutes(_ httpkit.Router) {}
