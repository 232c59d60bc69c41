// Package service contains policy administration workflows
package service

import (
	"context"
	"sort"
	"time"

	perrs "leadrelay/internal/platform/errors"
	"leadrelay/internal/services/api/policy/domain"
	poldom "leadrelay/internal/services/policy/domain"
)

// Service defines the service contract for policy administration
type Service interface{ domain.ServicePort }

// Svc implements the Service interface over the worker policy ports
type Svc struct {
	snap  poldom.SnapshotPort
	admin poldom.AdminPort
}

// New creates a new policy admin service
func New(snap poldom.SnapshotPort, admin poldom.AdminPort) *Svc {
	if snap == nil || admin == nil {
		panic("policy api.Service requires non nil Snapshot and Admin ports")
	}
	return &Svc{snap: snap, admin: admin}
}

// Current returns the live snapshot
func (s *Svc) Current(_ context.Context) domain.PolicyView {
	return view(s.snap.Snapshot())
}

// Update applies the settings in key order and returns the resulting snapshot
func (s *Svc) Update(ctx context.Context, in domain.UpdateInput) (domain.PolicyView, error) {
	keys := make([]string, 0, len(in.Settings))
	for k := range in.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var cur poldom.Snapshot
	for _, k := range keys {
		next, err := s.admin.Apply(ctx, k, in.Settings[k])
		if err != nil {
			return domain.PolicyView{}, err
		}
		cur = next
	}
	return view(cur), nil
}

// SetBlacklist flips the deny flag for a sender
func (s *Svc) SetBlacklist(ctx context.Context, in domain.FlagInput) (domain.PolicyView, error) {
	if err := checkFlag(in); err != nil {
		return domain.PolicyView{}, err
	}
	if err := s.admin.SetBlacklist(ctx, in.SenderID, *in.Flagged); err != nil {
		return domain.PolicyView{}, err
	}
	return view(s.snap.Snapshot()), nil
}

// SetWhitelist flips the allow flag for a sender
func (s *Svc) SetWhitelist(ctx context.Context, in domain.FlagInput) (domain.PolicyView, error) {
	if err := checkFlag(in); err != nil {
		return domain.PolicyView{}, err
	}
	if err := s.admin.SetWhitelist(ctx, in.SenderID, *in.Flagged); err != nil {
		return domain.PolicyView{}, err
	}
	return view(s.snap.Snapshot()), nil
}

func checkFlag(in domain.FlagInput) error {
	if in.SenderID == "" {
		return perrs.InvalidArgf("sender_id is required")
	}
	if in.Flagged == nil {
		return perrs.InvalidArgf("flagged is required")
	}
	return nil
}

// Senders lists the sender registry, most recently seen first
func (s *Svc) Senders(ctx context.Context, in domain.SendersInput) ([]domain.SenderView, error) {
	rows, err := s.admin.ListSenders(ctx, in.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SenderView, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.SenderView{
			ID:            r.ID,
			Username:      r.Username,
			FirstSeen:     fmtTime(r.FirstSeen),
			LastSeen:      fmtTime(r.LastSeen),
			MessageCount:  r.MessageCount,
			IsBlacklisted: r.IsBlacklisted,
			IsWhitelisted: r.IsWhitelisted,
		})
	}
	return out, nil
}

func view(s poldom.Snapshot) domain.PolicyView {
	return domain.PolicyView{
		ConfidenceThreshold: s.ConfidenceThreshold,
		HourlyLimit:         s.HourlyLimit,
		FloodWaitMultiplier: s.FloodWaitMultiplier,
		BlacklistEnabled:    s.BlacklistEnabled,
		WhitelistEnabled:    s.WhitelistEnabled,
		MinLength:           s.MinLength,
		MaxLength:           s.MaxLength,
		TargetChannel:       s.TargetChannel,
		TaxonomySeq:         s.TaxonomySeq,
		Version:             s.Version,
		LoadedAt:            fmtTime(s.LoadedAt),
		BlacklistSize:       len(s.Blacklist),
		WhitelistSize:       len(s.Whitelist),
	}
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
