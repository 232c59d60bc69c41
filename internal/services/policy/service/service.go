// Package service holds the policy snapshot and its durable mutations
package service

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"leadrelay/internal/modkit/repokit"
	perrs "leadrelay/internal/platform/errors"
	"leadrelay/internal/platform/logger"
	"leadrelay/internal/services/policy/domain"
	"leadrelay/internal/services/policy/repo"
)

// Config carries the policy defaults used until settings rows override them
type Config struct {
	ConfidenceThreshold int
	HourlyLimit         int
	FloodWaitMultiplier float64
	BlacklistEnabled    bool
	WhitelistEnabled    bool
	MinLength           int
	MaxLength           int
	TargetChannel       string
}

// Service implements domain.SnapshotPort, AdminPort and SenderPort
// the current snapshot lives behind an atomic pointer and is replaced as a
// whole on every reload, readers never see a partial update
type Service struct {
	db     repokit.TxRunner
	binder repokit.Binder[repo.Storage]
	store  repo.Storage
	cfg    Config

	cur     atomic.Pointer[domain.Snapshot]
	version atomic.Int64
	log     logger.Logger
	now     func() time.Time
}

// New constructs the policy service seeded with the config defaults
// the seed snapshot keeps decisions sane before the first Reload
func New(db repokit.TxRunner, binder repokit.Binder[repo.Storage], cfg Config) *Service {
	if db == nil {
		panic("policy.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("policy.Service requires a non nil Storage binder")
	}
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = 70
	}
	if cfg.HourlyLimit <= 0 {
		cfg.HourlyLimit = 100
	}
	if cfg.FloodWaitMultiplier <= 0 {
		cfg.FloodWaitMultiplier = 1.5
	}
	if cfg.MinLength < 0 {
		cfg.MinLength = 0
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = 10000
	}

	s := &Service{
		db:     db,
		binder: binder,
		store:  binder.Bind(db),
		cfg:    cfg,
		log:    *logger.Named("policy"),
		now:    time.Now,
	}
	seed := s.defaults(time.Time{}, nil, nil)
	s.cur.Store(&seed)
	return s
}

// Snapshot returns the current policy state
// the contained sets are shared and must be treated as read only
func (s *Service) Snapshot() domain.Snapshot { return *s.cur.Load() }

// Reload rebuilds the snapshot from postgres and swaps it in atomically
func (s *Service) Reload(ctx context.Context) (domain.Snapshot, error) {
	var (
		settings     map[string]string
		black, white []string
	)
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		st := s.binder.Bind(q)
		var err error
		if settings, err = st.Settings(ctx); err != nil {
			return err
		}
		black, white, err = st.Flagged(ctx)
		return err
	})
	if err != nil {
		return domain.Snapshot{}, perrs.FromPostgres(err, "reload policy")
	}

	snap := s.defaults(s.now().UTC(), black, white)
	for key, value := range settings {
		s.applySetting(&snap, key, value)
	}
	s.cur.Store(&snap)
	s.log.Debug().
		Int64("version", snap.Version).
		Int("blacklist", len(snap.Blacklist)).
		Int("whitelist", len(snap.Whitelist)).
		Msg("policy snapshot replaced")
	return snap, nil
}

// Apply validates one setting, persists it and replaces the snapshot
func (s *Service) Apply(ctx context.Context, key, value string) (domain.Snapshot, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	value = strings.TrimSpace(value)

	if err := validate(key, value); err != nil {
		return domain.Snapshot{}, err
	}
	if err := s.store.UpsertSetting(ctx, key, value, s.now().UTC()); err != nil {
		return domain.Snapshot{}, perrs.FromPostgres(err, "apply policy update")
	}
	s.log.Info().Str("key", key).Str("value", value).Msg("policy setting updated")
	return s.Reload(ctx)
}

// SetBlacklist flips the sender deny flag and replaces the snapshot
func (s *Service) SetBlacklist(ctx context.Context, senderID string, flagged bool) error {
	senderID = strings.TrimSpace(senderID)
	if senderID == "" {
		return perrs.InvalidArgf("sender id required")
	}
	if err := s.store.SetBlacklisted(ctx, senderID, flagged, s.now().UTC()); err != nil {
		return perrs.FromPostgres(err, "set blacklist flag")
	}
	s.log.Info().Str("sender", senderID).Bool("flagged", flagged).Msg("blacklist flag updated")
	_, err := s.Reload(ctx)
	return err
}

// SetWhitelist flips the sender allow flag and replaces the snapshot
func (s *Service) SetWhitelist(ctx context.Context, senderID string, flagged bool) error {
	senderID = strings.TrimSpace(senderID)
	if senderID == "" {
		return perrs.InvalidArgf("sender id required")
	}
	if err := s.store.SetWhitelisted(ctx, senderID, flagged, s.now().UTC()); err != nil {
		return perrs.FromPostgres(err, "set whitelist flag")
	}
	s.log.Info().Str("sender", senderID).Bool("flagged", flagged).Msg("whitelist flag updated")
	_, err := s.Reload(ctx)
	return err
}

// BumpTaxonomy advances the reload sequence observed by the relay
func (s *Service) BumpTaxonomy(ctx context.Context) (int64, error) {
	seq, err := s.store.BumpSeq(ctx, domain.KeyTaxonomySeq, s.now().UTC())
	if err != nil {
		return 0, perrs.FromPostgres(err, "bump taxonomy seq")
	}
	if _, err := s.Reload(ctx); err != nil {
		return 0, err
	}
	return seq, nil
}

// Note upserts a sender sighting, first seen, last seen and message count
func (s *Service) Note(ctx context.Context, senderID, username string, at time.Time) error {
	if senderID == "" {
		return nil
	}
	if err := s.store.Note(ctx, senderID, username, at.UTC()); err != nil {
		return perrs.FromPostgres(err, "note sender")
	}
	return nil
}

// ListSenders returns recently seen senders with their flags
func (s *Service) ListSenders(ctx context.Context, limit int) ([]domain.Sender, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.store.ListSenders(ctx, limit)
	if err != nil {
		return nil, perrs.FromPostgres(err, "list senders")
	}
	out := make([]domain.Sender, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Sender{
			ID:            r.ID,
			Username:      r.Username,
			FirstSeen:     r.FirstSeen,
			LastSeen:      r.LastSeen,
			MessageCount:  r.MessageCount,
			IsBlacklisted: r.IsBlacklisted,
			IsWhitelisted: r.IsWhitelisted,
		})
	}
	return out, nil
}

// defaults builds a snapshot from config alone
func (s *Service) defaults(loadedAt time.Time, black, white []string) domain.Snapshot {
	return domain.Snapshot{
		ConfidenceThreshold: s.cfg.ConfidenceThreshold,
		HourlyLimit:         s.cfg.HourlyLimit,
		FloodWaitMultiplier: s.cfg.FloodWaitMultiplier,
		BlacklistEnabled:    s.cfg.BlacklistEnabled,
		WhitelistEnabled:    s.cfg.WhitelistEnabled,
		MinLength:           s.cfg.MinLength,
		MaxLength:           s.cfg.MaxLength,
		TargetChannel:       s.cfg.TargetChannel,
		Version:             s.version.Add(1),
		LoadedAt:            loadedAt,
		Blacklist:           toSet(black),
		Whitelist:           toSet(white),
	}
}

// applySetting folds one stored row into the snapshot
// rows were validated on write, unparseable leftovers keep the default
func (s *Service) applySetting(snap *domain.Snapshot, key, value string) {
	switch key {
	case domain.KeyConfidenceThreshold:
		if n, err := strconv.Atoi(value); err == nil {
			snap.ConfidenceThreshold = n
		}
	case domain.KeyHourlyLimit:
		if n, err := strconv.Atoi(value); err == nil {
			snap.HourlyLimit = n
		}
	case domain.KeyFloodWaitMultiplier:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			snap.FloodWaitMultiplier = f
		}
	case domain.KeyBlacklistEnabled:
		if b, err := strconv.ParseBool(value); err == nil {
			snap.BlacklistEnabled = b
		}
	case domain.KeyWhitelistEnabled:
		if b, err := strconv.ParseBool(value); err == nil {
			snap.WhitelistEnabled = b
		}
	case domain.KeyMinLength:
		if n, err := strconv.Atoi(value); err == nil {
			snap.MinLength = n
		}
	case domain.KeyMaxLength:
		if n, err := strconv.Atoi(value); err == nil {
			snap.MaxLength = n
		}
	case domain.KeyTargetChannel:
		snap.TargetChannel = value
	case domain.KeyTaxonomySeq:
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			snap.TaxonomySeq = n
		}
	default:
		s.log.Warn().Str("key", key).Msg("ignoring unknown policy setting row")
	}
}

// validate rejects unknown keys and out of range values before persistence
func validate(key, value string) error {
	switch key {
	case domain.KeyConfidenceThreshold:
		return intInRange(key, value, 0, 100)
	case domain.KeyHourlyLimit:
		return intInRange(key, value, 1, 100000)
	case domain.KeyFloodWaitMultiplier:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return perrs.Newf(perrs.ErrorCodeValidation, "%s must be a positive number", key)
		}
		return nil
	case domain.KeyBlacklistEnabled, domain.KeyWhitelistEnabled:
		if _, err := strconv.ParseBool(value); err != nil {
			return perrs.Newf(perrs.ErrorCodeValidation, "%s must be a boolean", key)
		}
		return nil
	case domain.KeyMinLength:
		return intInRange(key, value, 0, 100000)
	case domain.KeyMaxLength:
		return intInRange(key, value, 1, 1000000)
	case domain.KeyTargetChannel:
		if value == "" {
			return perrs.Newf(perrs.ErrorCodeValidation, "%s must not be empty", key)
		}
		return nil
	default:
		// taxonomy_seq is managed through BumpTaxonomy, not settable here
		return perrs.InvalidArgf("unknown policy key %q", key)
	}
}

func intInRange(key, value string, lo, hi int) error {
	n, err := strconv.Atoi(value)
	if err != nil || n < lo || n > hi {
		return perrs.Newf(perrs.ErrorCodeValidation, "%s must be an integer in [%d, %d]", key, lo, hi)
	}
	return nil
}

func toSet(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
