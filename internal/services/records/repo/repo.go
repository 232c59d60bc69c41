// Package repo persists message records to clickhouse
package repo

import (
	"context"

	"leadrelay/internal/platform/store"
	"leadrelay/internal/services/records/domain"
)

// Storage is the persistence surface for message records
type Storage interface {
	Insert(ctx context.Context, rec domain.Record) error
}

// NewCH returns a storage backed by the clickhouse seam
func NewCH(ch store.Clickhouse) Storage {
	if ch == nil {
		panic("records repo requires the clickhouse seam")
	}
	return &chStore{ch: ch}
}

type chStore struct{ ch store.Clickhouse }

const table = "leadrelay.message_records"

// Insert appends one record row
// values follow the table declaration order:
// id, observed_at, observed_by, chat_id, message_id, sender_id, sender_name,
// language, text, service, confidence, urgency, outcome, drop_reason,
// account_id, attempts, recorded_at
func (s *chStore) Insert(ctx context.Context, rec domain.Record) error {
	row := []any{
		rec.ID,
		rec.ObservedAt,
		rec.ObservedBy,
		rec.ChatID,
		rec.MessageID,
		rec.SenderID,
		rec.SenderName,
		rec.Language,
		rec.Text,
		rec.Service,
		clampU8(rec.Confidence),
		clampU8(rec.Urgency),
		string(rec.Outcome),
		string(rec.DropReason),
		rec.AccountID,
		clampU8(rec.Attempts),
		rec.RecordedAt,
	}
	return s.ch.Insert(ctx, table, [][]any{row})
}

func clampU8(n int) uint8 {
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}
