package domain

import (
	"context"
	"time"
)

// SnapshotPort yields the current policy snapshot
// callers grab one snapshot per message so every check in a decision sees
// the same state
type SnapshotPort interface {
	Snapshot() Snapshot
}

// AdminPort mutates durable policy state, every mutation ends in a full
// snapshot replacement
type AdminPort interface {
	Apply(ctx context.Context, key, value string) (Snapshot, error)
	SetBlacklist(ctx context.Context, senderID string, flagged bool) error
	SetWhitelist(ctx context.Context, senderID string, flagged bool) error
	Reload(ctx context.Context) (Snapshot, error)
	BumpTaxonomy(ctx context.Context) (int64, error)
	ListSenders(ctx context.Context, limit int) ([]Sender, error)
}

// SenderPort records sender sightings for the user registry
type SenderPort interface {
	Note(ctx context.Context, senderID, username string, at time.Time) error
}
