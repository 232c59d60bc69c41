package module

import (
	"context"

	cdom "leadrelay/internal/services/api/classify/domain"
	csvc "leadrelay/internal/services/api/classify/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// adaptClassifyPort exposes service methods as module ports for cross-module usage
type adaptClassifyPort struct{ svc csvc.Service }

func (a adaptClassifyPort) Classify(ctx context.Context, in cdom.ClassifyInput) cdom.ClassifyView {
	return a.svc.Classify(ctx, in)
}
