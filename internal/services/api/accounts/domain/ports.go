package domain

import "context"

// ServicePort defines the service contract for account administration
type ServicePort interface {
	List(ctx context.Context) ([]AccountView, error)
	Add(ctx context.Context, in AddAccountInput) (AccountView, error)
	Remove(ctx context.Context, id string) error
	SetState(ctx context.Context, id string, in StateInput) (AccountView, error)
}
