// Package module wires policy administration into the API using modkit
package module

import (
	"net/http"

	modkit "leadrelay/internal/modkit"
	"leadrelay/internal/modkit/httpkit"

	polhttp "leadrelay/internal/services/api/policy/http"
	psvc "leadrelay/internal/services/api/policy/service"
	poldom "leadrelay/internal/services/policy/domain"
)

// Module implements the policy API module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     any
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc psvc.Service
}

// Ports declares the required injected worker port(s) for this API module
type Ports struct {
	Snapshot poldom.SnapshotPort
	Admin    poldom.AdminPort
}

// New constructs the policy API module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("policy"),
		modkit.WithPrefix("/policy"),
	}, opts...)...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.Snapshot == nil || injected.Admin == nil {
		panic("policy API module requires Snapshot and Admin ports (from services/policy)")
	}

	svc := psvc.New(injected.Snapshot, injected.Admin)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = adaptPolicyPort{svc: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		polhttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return m.prefix }
