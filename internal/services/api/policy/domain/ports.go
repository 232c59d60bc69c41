package domain

import "context"

// ServicePort defines the service contract for policy administration
type ServicePort interface {
	Current(ctx context.Context) PolicyView
	Update(ctx context.Context, in UpdateInput) (PolicyView, error)
	SetBlacklist(ctx context.Context, in FlagInput) (PolicyView, error)
	SetWhitelist(ctx context.Context, in FlagInput) (PolicyView, error)
	Senders(ctx context.Context, in SendersInput) ([]SenderView, error)
}
