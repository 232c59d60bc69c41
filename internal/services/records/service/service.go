// Package service writes message records and fences duplicate observations
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	perrs "leadrelay/internal/platform/errors"
	"leadrelay/internal/platform/logger"
	"leadrelay/internal/platform/store"
	"leadrelay/internal/services/records/domain"
	"leadrelay/internal/services/records/repo"
)

// Config tunes the records service
type Config struct {
	// DedupTTL bounds how long an observed message fences duplicates
	DedupTTL time.Duration
}

// Service implements domain.WriterPort and domain.DedupPort
type Service struct {
	store repo.Storage
	rds   store.Redis
	cfg   Config
	log   logger.Logger
	now   func() time.Time
	newID func() string
}

// New constructs the records service
// rds may be nil, dedup then admits every observation
func New(storage repo.Storage, rds store.Redis, cfg Config) *Service {
	if storage == nil {
		panic("records.Service requires a non nil Storage")
	}
	if cfg.DedupTTL <= 0 {
		cfg.DedupTTL = 48 * time.Hour
	}
	return &Service{
		store: storage,
		rds:   rds,
		cfg:   cfg,
		log:   *logger.Named("records"),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Write stores one terminal record
func (s *Service) Write(ctx context.Context, rec domain.Record) (domain.Record, error) {
	switch rec.Outcome {
	case domain.OutcomeForwarded, domain.OutcomeDropped, domain.OutcomeFailed:
	default:
		return domain.Record{}, perrs.InvalidArgf("record outcome %q is not terminal", rec.Outcome)
	}
	if rec.Outcome == domain.OutcomeDropped && rec.DropReason == "" {
		return domain.Record{}, perrs.InvalidArgf("dropped record requires a drop reason")
	}

	if rec.ID == "" {
		rec.ID = s.newID()
	}
	rec.RecordedAt = s.now().UTC()
	if rec.ObservedAt.IsZero() {
		rec.ObservedAt = rec.RecordedAt
	}

	if err := s.store.Insert(ctx, rec); err != nil {
		return domain.Record{}, perrs.DBf("write message record: %v", err)
	}
	s.log.Debug().
		Str("record", rec.ID).
		Str("outcome", string(rec.Outcome)).
		Str("chat", rec.ChatID).
		Msg("record written")
	return rec, nil
}

// Claim marks chat and message as observed, true means first observer
func (s *Service) Claim(ctx context.Context, chatID, messageID string) (bool, error) {
	if s.rds == nil {
		return true, nil
	}
	ok, err := s.rds.SetNX(ctx, dedupKey(chatID, messageID), "1", s.cfg.DedupTTL)
	if err != nil {
		return false, perrs.Unavailablef("dedup claim: %v", err)
	}
	return ok, nil
}

func dedupKey(chatID, messageID string) string {
	return "seen:" + chatID + ":" + messageID
}
