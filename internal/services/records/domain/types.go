// Package domain defines the message record model
package domain

import "time"

// Outcome is the terminal disposition of one observed message
type Outcome string

// Terminal outcomes, exactly one per record
const (
	OutcomeForwarded Outcome = "forwarded"
	OutcomeDropped   Outcome = "dropped"
	OutcomeFailed    Outcome = "failed_after_retries"
)

// DropReason says why a message was dropped instead of forwarded
type DropReason string

const (
	DropBlacklisted    DropReason = "blacklisted"
	DropNotWhitelisted DropReason = "not_whitelisted"
	DropLowConfidence  DropReason = "low_confidence"
	DropNoService      DropReason = "no_service"
	DropTooShort       DropReason = "too_short"
	DropTooLong        DropReason = "too_long"
	DropDuplicate      DropReason = "duplicate"
)

// Record is one observed message with its classification and outcome
// records are immutable once written
type Record struct {
	ID         string     `json:"id"`
	ObservedAt time.Time  `json:"observed_at"`
	ObservedBy string     `json:"observed_by"`
	ChatID     string     `json:"chat_id"`
	MessageID  string     `json:"message_id"`
	SenderID   string     `json:"sender_id"`
	SenderName string     `json:"sender_name,omitempty"`
	Language   string     `json:"language,omitempty"`
	Text       string     `json:"text"`
	Service    string     `json:"service,omitempty"`
	Confidence int        `json:"confidence"`
	Urgency    int        `json:"urgency"`
	Outcome    Outcome    `json:"outcome"`
	DropReason DropReason `json:"drop_reason,omitempty"`
	AccountID  string     `json:"account_id,omitempty"`
	Attempts   int        `json:"attempts"`
	RecordedAt time.Time  `json:"recorded_at"`
}
