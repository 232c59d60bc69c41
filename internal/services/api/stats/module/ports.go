package module

import (
	"context"

	"leadrelay/internal/services/api/stats/domain"
	statssvc "leadrelay/internal/services/api/stats/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

type adaptStatsPort struct{ svc statssvc.Service }

// Overview returns the relay overview
func (a adaptStatsPort) Overview(ctx context.Context) (domain.Overview, error) {
	return a.svc.Overview(ctx)
}
