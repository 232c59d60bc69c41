package module

import (
	"context"

	pdom "leadrelay/internal/services/api/policy/domain"
	psvc "leadrelay/internal/services/api/policy/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// adaptPolicyPort exposes service methods as module ports for cross-module usage
type adaptPolicyPort struct{ svc psvc.Service }

func (a adaptPolicyPort) Current(ctx context.Context) pdom.PolicyView {
	return a.svc.Current(ctx)
}

func (a adaptPolicyPort) Update(ctx context.Context, in pdom.UpdateInput) (pdom.PolicyView, error) {
	return a.svc.Update(ctx, in)
}

func (a adaptPolicyPort) SetBlacklist(ctx context.Context, in pdom.FlagInput) (pdom.PolicyView, error) {
	return a.svc.SetBlacklist(ctx, in)
}

func (a adaptPolicyPort) SetWhitelist(ctx context.Context, in pdom.FlagInput) (pdom.PolicyView, error) {
	return a.svc.SetWhitelist(ctx, in)
}

func (a adaptPolicyPort) Senders(ctx context.Context, in pdom.SendersInput) ([]pdom.SenderView, error) {
	return a.svc.Senders(ctx, in)
}
