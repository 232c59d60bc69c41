// Package module wires taxonomy administration into the API using modkit
package module

import (
	"net/http"

	modkit "leadrelay/internal/modkit"
	"leadrelay/internal/modkit/httpkit"

	"leadrelay/internal/core/classify"
	"leadrelay/internal/core/taxonomy"
	taxdom "leadrelay/internal/services/api/taxonomy/domain"
	thttp "leadrelay/internal/services/api/taxonomy/http"
	tsvc "leadrelay/internal/services/api/taxonomy/service"
)

// Module implements the taxonomy API module.
// It owns the API process classify engine; reload swaps it in place and the
// classify module scores against the same engine
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     Ports
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc tsvc.Service
}

// New constructs the taxonomy API module.
// A pack that fails to parse at startup is fatal
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("taxonomy"),
		modkit.WithPrefix("/taxonomy"),
	}, opts...)...)

	injected, ok := b.Ports.(taxdom.Ports)
	if !ok || injected.Admin == nil {
		panic("taxonomy API module requires Admin port (from services/policy)")
	}

	cfg := FromConfig(deps.Cfg)

	pack, err := loadPack(cfg.Path)
	if err != nil {
		panic(err)
	}
	engine := classify.New(pack)

	svc := tsvc.New(engine, injected.Admin, cfg.Path)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = Ports{Service: svc, Engine: engine}

	external := b.Register
	m.register = func(r httpkit.Router) {
		thttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

func loadPack(path string) (*taxonomy.Pack, error) {
	if path != "" {
		return taxonomy.LoadFile(path)
	}
	return taxonomy.Load()
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
