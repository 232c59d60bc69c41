// Package service assembles the stats overview
package service

import (
	"context"
	"sort"
	"time"

	"leadrelay/internal/services/api/stats/domain"
	"leadrelay/internal/services/api/stats/repo"
	accdom "leadrelay/internal/services/accounts/domain"
)

// Service defines the stats service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the stats service over the record store and the registry
type Svc struct {
	repo repo.Repo
	reg  accdom.RegistryPort
	now  func() time.Time
}

// New constructs a stats service
func New(r repo.Repo, reg accdom.RegistryPort) *Svc {
	if r == nil {
		panic("stats.Service requires a non nil Repo")
	}
	if reg == nil {
		panic("stats.Service requires a non nil RegistryPort")
	}
	return &Svc{repo: r, reg: reg, now: time.Now}
}

// Overview returns account counts, outcome totals, the 7 day service ranking
// and per account performance in one shot
func (s *Svc) Overview(ctx context.Context) (domain.Overview, error) {
	now := s.now().UTC()

	accounts, err := s.reg.List(ctx)
	if err != nil {
		return domain.Overview{}, err
	}

	allTime, err := s.repo.OutcomeTotals(ctx, time.Unix(0, 0).UTC())
	if err != nil {
		return domain.Overview{}, err
	}
	last24h, err := s.repo.OutcomeTotals(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return domain.Overview{}, err
	}
	top, err := s.repo.TopServices(ctx, now.Add(-7*24*time.Hour), 10)
	if err != nil {
		return domain.Overview{}, err
	}
	perf, err := s.repo.AccountPerf(ctx)
	if err != nil {
		return domain.Overview{}, err
	}

	out := domain.Overview{
		TotalAccounts: len(accounts),
		AllTime:       totals(allTime),
		Last24h:       totals(last24h),
		TopServices:   make([]domain.ServiceCount, 0, len(top)),
		GeneratedAt:   now.Format(time.RFC3339),
	}
	for _, t := range top {
		out.TopServices = append(out.TopServices, domain.ServiceCount{
			Service:   t.Service,
			Forwarded: t.Forwarded,
		})
	}

	// records from accounts that have since left the registry stay in the
	// totals above but are not listed per account
	byID := make(map[string]repo.RowAccountPerf, len(perf))
	for _, p := range perf {
		byID[p.AccountID] = p
	}
	out.Accounts = make([]domain.AccountPerf, 0, len(accounts))
	for _, a := range accounts {
		if a.State == accdom.StateActive {
			out.ActiveAccounts++
		}
		row := domain.AccountPerf{
			AccountID: a.ID,
			State:     string(a.State),
			TotalSent: a.TotalSent,
		}
		if p, ok := byID[a.ID]; ok {
			row.Forwarded = p.Forwarded
			if !p.LastForwarded.IsZero() {
				row.LastForwarded = p.LastForwarded.UTC().Format(time.RFC3339)
			}
		}
		out.Accounts = append(out.Accounts, row)
	}
	sort.Slice(out.Accounts, func(i, j int) bool {
		if out.Accounts[i].Forwarded != out.Accounts[j].Forwarded {
			return out.Accounts[i].Forwarded > out.Accounts[j].Forwarded
		}
		return out.Accounts[i].AccountID < out.Accounts[j].AccountID
	})

	return out, nil
}

func totals(r repo.RowTotals) domain.OutcomeTotals {
	return domain.OutcomeTotals{
		Seen:      r.Seen,
		Forwarded: r.Forwarded,
		Dropped:   r.Dropped,
		Failed:    r.Failed,
	}
}
