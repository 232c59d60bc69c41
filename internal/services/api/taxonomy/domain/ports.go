package domain

import (
	"context"

	poldom "leadrelay/internal/services/policy/domain"
)

// Ports declares the worker collaborators injected into the taxonomy module
type Ports struct {
	// Admin bumps the shared taxonomy sequence so relay workers reload too
	Admin poldom.AdminPort
}

// ServicePort drives taxonomy inspection and reload
type ServicePort interface {
	Describe(ctx context.Context) PackView
	Reload(ctx context.Context) (ReloadOutput, error)
}
