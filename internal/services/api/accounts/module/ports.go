package module

import (
	"context"

	adom "leadrelay/internal/services/api/accounts/domain"
	asvc "leadrelay/internal/services/api/accounts/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// adaptAccountsPort exposes service methods as module ports for cross-module usage
type adaptAccountsPort struct{ svc asvc.Service }

func (a adaptAccountsPort) List(ctx context.Context) ([]adom.AccountView, error) {
	return a.svc.List(ctx)
}

func (a adaptAccountsPort) Add(ctx context.Context, in adom.AddAccountInput) (adom.AccountView, error) {
	return a.svc.Add(ctx, in)
}

func (a adaptAccountsPort) Remove(ctx context.Context, id string) error {
	return a.svc.Remove(ctx, id)
}

func (a adaptAccountsPort) SetState(ctx context.Context, id string, in adom.StateInput) (adom.AccountView, error) {
	return a.svc.SetState(ctx, id, in)
}
