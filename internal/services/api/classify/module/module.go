// Package module wires ad hoc classification into the API using modkit
package module

import (
	"net/http"

	modkit "leadrelay/internal/modkit"
	"leadrelay/internal/modkit/httpkit"

	"leadrelay/internal/core/classify"
	chttp "leadrelay/internal/services/api/classify/http"
	csvc "leadrelay/internal/services/api/classify/service"
)

// Module implements the classify API module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     any
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc csvc.Service
}

// Ports declares the injected engine shared with the taxonomy module
type Ports struct {
	Engine *classify.Engine
}

// New constructs the classify API module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("classify"),
		modkit.WithPrefix("/classify"),
	}, opts...)...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.Engine == nil {
		panic("classify API module requires Engine port (from api/taxonomy)")
	}

	svc := csvc.New(injected.Engine)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = adaptClassifyPort{svc: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		chttp.Register(r, m.svc)
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
