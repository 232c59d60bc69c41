package service

import (
	"context"
	"strings"
	"time"

	"leadrelay/internal/modkit/repokit"
	perrs "leadrelay/internal/platform/errors"
	"leadrelay/internal/platform/logger"
	tim "leadrelay/internal/platform/time"
	"leadrelay/internal/services/accounts/domain"
	"leadrelay/internal/services/accounts/repo"
)

// Service is the registry side of the accounts module
// admin mutations are durable only, the live pool converges through Sync,
// so the api binary and the relay daemon share one code path
type Service struct {
	Pool *Pool

	db     repokit.TxRunner
	binder repokit.Binder[repo.Storage]
	store  repo.Storage
	log    logger.Logger
	now    func() time.Time
}

// New constructs the registry service around an optional live pool
func New(db repokit.TxRunner, binder repokit.Binder[repo.Storage], pool *Pool) *Service {
	if db == nil {
		panic("accounts.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("accounts.Service requires a non nil Storage binder")
	}
	return &Service{
		Pool:   pool,
		db:     db,
		binder: binder,
		store:  binder.Bind(db),
		log:    *logger.Named("accounts"),
		now:    time.Now,
	}
}

// List returns the persisted registry view, sorted by id
func (s *Service) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, perrs.FromPostgres(err, "list accounts")
	}
	out := make([]domain.Account, 0, len(rows))
	for _, r := range rows {
		out = append(out, toAccount(r))
	}
	return out, nil
}

// Add registers a new worker account in the registry
func (s *Service) Add(ctx context.Context, id, credentialsRef string) (domain.Account, error) {
	id = strings.TrimSpace(id)
	credentialsRef = strings.TrimSpace(credentialsRef)
	if id == "" {
		return domain.Account{}, perrs.InvalidArgf("account id required")
	}
	if credentialsRef == "" {
		return domain.Account{}, perrs.InvalidArgf("credentials_ref required")
	}

	now := s.now().UTC()
	ok, err := s.store.Insert(ctx, id, credentialsRef, now)
	if err != nil {
		return domain.Account{}, perrs.FromPostgres(err, "add account")
	}
	if !ok {
		return domain.Account{}, perrs.Conflictf("account %q already registered", id)
	}
	s.log.Info().Str("account", id).Msg("account registered")
	return domain.Account{
		ID:             id,
		CredentialsRef: credentialsRef,
		Enabled:        true,
		State:          domain.StateDisconnected,
		AddedAt:        now,
	}, nil
}

// Remove deletes the account from the registry
func (s *Service) Remove(ctx context.Context, id string) error {
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return perrs.FromPostgres(err, "remove account")
	}
	if !ok {
		return perrs.NotFoundf("account %q not registered", id)
	}
	s.log.Info().Str("account", id).Msg("account removed")
	return nil
}

// SetDisabled pulls the account from rotation durably
func (s *Service) SetDisabled(ctx context.Context, id string) error {
	return s.setEnabled(ctx, id, false)
}

// SetEnabled clears a disabled account so the relay can redial it
func (s *Service) SetEnabled(ctx context.Context, id string) error {
	return s.setEnabled(ctx, id, true)
}

func (s *Service) setEnabled(ctx context.Context, id string, enabled bool) error {
	ok, err := s.store.SetEnabled(ctx, id, enabled, s.now().UTC())
	if err != nil {
		return perrs.FromPostgres(err, "update account enabled")
	}
	if !ok {
		return perrs.NotFoundf("account %q not registered", id)
	}
	s.log.Info().Str("account", id).Bool("enabled", enabled).Msg("account enabled flag updated")
	return nil
}

// Load seeds the pool arena from the registry at startup
// disabled rows stay out of rotation, a future cooldown is restored so a
// restart does not cut a provider mandated wait short
func (s *Service) Load(ctx context.Context) (int, error) {
	if s.Pool == nil {
		return 0, nil
	}
	rows, err := s.store.List(ctx)
	if err != nil {
		return 0, perrs.FromPostgres(err, "load accounts")
	}
	now := s.now().UTC()
	for _, r := range rows {
		s.Pool.Add(r.ID, r.CredentialsRef)
		s.Pool.restore(r.ID, restoreState{
			cooldownUntil:  tim.Deref(r.CooldownUntil),
			windowCount:    r.WindowCount,
			totalSent:      r.TotalSent,
			lastUsed:       tim.Deref(r.LastUsed),
			consecutiveErr: r.ConsecutiveErr,
			now:            now,
		})
		if !r.Enabled {
			s.Pool.SetDisabled(r.ID)
		}
	}
	return len(rows), nil
}

// Sync applies registry changes to the live arena
// additions and removals follow the rows, the enabled flag forces accounts
// off or revives explicitly re enabled ones
func (s *Service) Sync(ctx context.Context) error {
	if s.Pool == nil {
		return nil
	}
	rows, err := s.store.List(ctx)
	if err != nil {
		return perrs.FromPostgres(err, "sync accounts")
	}

	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		seen[r.ID] = struct{}{}
		cur, ok := s.Pool.Get(r.ID)
		if !ok {
			s.Pool.Add(r.ID, r.CredentialsRef)
			if !r.Enabled {
				s.Pool.SetDisabled(r.ID)
			}
			s.log.Info().Str("account", r.ID).Msg("account joined pool")
			continue
		}
		switch {
		case !r.Enabled && cur.State != domain.StateDisabled:
			s.Pool.SetDisabled(r.ID)
			s.log.Info().Str("account", r.ID).Msg("account forced off by registry")
		case r.Enabled && cur.State == domain.StateDisabled:
			s.Pool.SetEnabled(r.ID)
			s.log.Info().Str("account", r.ID).Msg("account revived by registry")
		}
	}

	for _, a := range s.Pool.Snapshot() {
		if _, ok := seen[a.ID]; !ok {
			s.Pool.Remove(a.ID)
			s.log.Info().Str("account", a.ID).Msg("account left pool")
		}
	}
	return nil
}

// SaveRuntime flushes the current pool state back to the registry
// only relay owned columns are written, admin intent is never clobbered
func (s *Service) SaveRuntime(ctx context.Context) error {
	if s.Pool == nil {
		return nil
	}
	accounts := s.Pool.Snapshot()
	if len(accounts) == 0 {
		return nil
	}
	now := s.now().UTC()
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		st := s.binder.Bind(q)
		for _, a := range accounts {
			row := repo.RuntimeRow{
				ID:             a.ID,
				State:          string(a.State),
				WindowCount:    a.WindowCount,
				CooldownUntil:  tim.Ptr(a.CooldownUntil),
				ConsecutiveErr: a.ConsecutiveErr,
				TotalSent:      a.TotalSent,
				LastUsed:       tim.Ptr(a.LastUsed),
			}
			if err := st.UpdateRuntime(ctx, row, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return perrs.FromPostgres(err, "save account runtime")
	}
	return nil
}

// PersistDisabled makes a runtime disable durable so the account stays out of
// rotation across sync ticks and restarts until an explicit re enable
func (s *Service) PersistDisabled(ctx context.Context, id string) error {
	return s.setEnabled(ctx, id, false)
}

func toAccount(r repo.Row) domain.Account {
	return domain.Account{
		ID:             r.ID,
		CredentialsRef: r.CredentialsRef,
		Enabled:        r.Enabled,
		State:          domain.State(r.State),
		CooldownUntil:  tim.Deref(r.CooldownUntil),
		WindowCount:    r.WindowCount,
		ConsecutiveErr: r.ConsecutiveErr,
		TotalSent:      r.TotalSent,
		LastUsed:       tim.Deref(r.LastUsed),
		AddedAt:        r.AddedAt,
	}
}
