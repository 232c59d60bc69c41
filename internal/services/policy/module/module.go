// Package module wires the policy service and exposes its ports
package module

import (
	"leadrelay/internal/modkit"
	"leadrelay/internal/modkit/httpkit"
	"leadrelay/internal/services/policy/repo"
	"leadrelay/internal/services/policy/service"
)

// Module defines the policy module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the policy module with its ports
func New(deps modkit.Deps, overrides Options) *Module {
	// Load defaults, then apply non-zero overrides
	opts := FromConfig(deps.Cfg)

	if overrides.ConfidenceThreshold != 0 {
		opts.ConfidenceThreshold = overrides.ConfidenceThreshold
	}
	if overrides.HourlyLimit != 0 {
		opts.HourlyLimit = overrides.HourlyLimit
	}
	if overrides.FloodWaitMultiplier != 0 {
		opts.FloodWaitMultiplier = overrides.FloodWaitMultiplier
	}
	if overrides.MinLength != 0 {
		opts.MinLength = overrides.MinLength
	}
	if overrides.MaxLength != 0 {
		opts.MaxLength = overrides.MaxLength
	}
	if overrides.TargetChannel != "" {
		opts.TargetChannel = overrides.TargetChannel
	}

	svc := service.New(deps.PG, repo.NewPG(), service.Config{
		ConfidenceThreshold: opts.ConfidenceThreshold,
		HourlyLimit:         opts.HourlyLimit,
		FloodWaitMultiplier: opts.FloodWaitMultiplier,
		BlacklistEnabled:    opts.BlacklistEnabled,
		WhitelistEnabled:    opts.WhitelistEnabled,
		MinLength:           opts.MinLength,
		MaxLength:           opts.MaxLength,
		TargetChannel:       opts.TargetChannel,
	})

	m := &Module{deps: deps}
	m.ports = Ports{
		Snapshot: svc,
		Admin:    svc,
		Senders:  svc,
	}
	return m
}

// Ports returns the module ports (Snapshot, Admin, Senders)
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return "policy" }

// Prefix returns the module config prefix (none, routes live in the api modules)
func (m *Module) Prefix() string { return "" }

// MountRoutes returns no HTTP routes
func (m *Module) MountRoutes(_ httpkit.Router) {}
