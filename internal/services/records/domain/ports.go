package domain

import "context"

// WriterPort persists terminal records
type WriterPort interface {
	// Write stores the record, the returned copy carries the assigned id
	// and recorded_at timestamp
	Write(ctx context.Context, rec Record) (Record, error)
}

// DedupPort fences duplicate observations of the same chat message
// two pool accounts in one group see every message twice, the claim decides
// which observation proceeds
type DedupPort interface {
	// Claim marks chat and message as observed
	// true means this caller is the first observer
	Claim(ctx context.Context, chatID, messageID string) (bool, error)
}
