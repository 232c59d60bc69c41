// Package service contains account administration workflows
package service

import (
	"context"
	"strings"
	"time"

	perr "leadrelay/internal/platform/errors"
	"leadrelay/internal/services/api/accounts/domain"
	accdom "leadrelay/internal/services/accounts/domain"
)

// Service defines the service contract for account administration
type Service interface{ domain.ServicePort }

// Svc implements the Service interface over the durable registry.
// Mutations touch postgres only, the relay pool converges on its sync tick
type Svc struct {
	reg accdom.RegistryPort
}

// New creates a new accounts admin service
func New(reg accdom.RegistryPort) *Svc {
	if reg == nil {
		panic("accounts api.Service requires a non nil RegistryPort")
	}
	return &Svc{reg: reg}
}

// List returns every registered account sorted by id
func (s *Svc) List(ctx context.Context) ([]domain.AccountView, error) {
	rows, err := s.reg.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.AccountView, 0, len(rows))
	for _, a := range rows {
		out = append(out, view(a))
	}
	return out, nil
}

// Add registers a new account
func (s *Svc) Add(ctx context.Context, in domain.AddAccountInput) (domain.AccountView, error) {
	id := strings.TrimSpace(in.ID)
	ref := strings.TrimSpace(in.CredentialsRef)
	if id == "" || ref == "" {
		return domain.AccountView{}, perr.InvalidArgf("account id and credentials_ref are required")
	}
	a, err := s.reg.Add(ctx, id, ref)
	if err != nil {
		return domain.AccountView{}, err
	}
	return view(a), nil
}

// Remove deletes the account from the registry
func (s *Svc) Remove(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return perr.InvalidArgf("account id required")
	}
	return s.reg.Remove(ctx, id)
}

// SetState flips the enabled flag and returns the refreshed row
func (s *Svc) SetState(ctx context.Context, id string, in domain.StateInput) (domain.AccountView, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.AccountView{}, perr.InvalidArgf("account id required")
	}
	if in.Enabled == nil {
		return domain.AccountView{}, perr.InvalidArgf("enabled is required")
	}

	var err error
	if *in.Enabled {
		err = s.reg.SetEnabled(ctx, id)
	} else {
		err = s.reg.SetDisabled(ctx, id)
	}
	if err != nil {
		return domain.AccountView{}, err
	}

	rows, err := s.reg.List(ctx)
	if err != nil {
		return domain.AccountView{}, err
	}
	for _, a := range rows {
		if a.ID == id {
			return view(a), nil
		}
	}
	return domain.AccountView{}, perr.NotFoundf("account %s not found", id)
}

func view(a accdom.Account) domain.AccountView {
	return domain.AccountView{
		ID:             a.ID,
		Enabled:        a.Enabled,
		State:          string(a.State),
		CooldownUntil:  fmtTime(a.CooldownUntil),
		WindowCount:    a.WindowCount,
		ConsecutiveErr: a.ConsecutiveErr,
		TotalSent:      a.TotalSent,
		LastUsed:       fmtTime(a.LastUsed),
		AddedAt:        fmtTime(a.AddedAt),
	}
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
