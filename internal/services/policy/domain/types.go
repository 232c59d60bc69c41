// Package domain defines the policy snapshot and the gate decision
package domain

import (
	"time"

	recdom "leadrelay/internal/services/records/domain"
)

// Setting keys accepted by Apply
const (
	KeyConfidenceThreshold = "confidence_threshold"
	KeyHourlyLimit         = "hourly_limit"
	KeyFloodWaitMultiplier = "flood_wait_multiplier"
	KeyBlacklistEnabled    = "blacklist_enabled"
	KeyWhitelistEnabled    = "whitelist_enabled"
	KeyMinLength           = "min_length"
	KeyMaxLength           = "max_length"
	KeyTargetChannel       = "target_channel"
	KeyTaxonomySeq         = "taxonomy_seq"
)

// Snapshot is the full policy state applied to every decision
// it is replaced atomically as a whole, never edited in place
type Snapshot struct {
	ConfidenceThreshold int     `json:"confidence_threshold"`
	HourlyLimit         int     `json:"hourly_limit"`
	FloodWaitMultiplier float64 `json:"flood_wait_multiplier"`
	BlacklistEnabled    bool    `json:"blacklist_enabled"`
	WhitelistEnabled    bool    `json:"whitelist_enabled"`
	MinLength           int     `json:"min_length"`
	MaxLength           int     `json:"max_length"`
	TargetChannel       string  `json:"target_channel"`

	// TaxonomySeq advances when an admin requests a taxonomy reload,
	// the relay reloads when it observes a new value
	TaxonomySeq int64 `json:"taxonomy_seq"`

	Version  int64     `json:"version"`
	LoadedAt time.Time `json:"loaded_at"`

	Blacklist map[string]struct{} `json:"-"`
	Whitelist map[string]struct{} `json:"-"`
}

// Verdict is the gate outcome for one message
type Verdict struct {
	Allow  bool
	Reason recdom.DropReason
}

// Blacklisted reports whether the sender carries the deny flag
func (s Snapshot) Blacklisted(senderID string) bool {
	_, ok := s.Blacklist[senderID]
	return ok
}

// Whitelisted reports whether the sender carries the allow flag
func (s Snapshot) Whitelisted(senderID string) bool {
	_, ok := s.Whitelist[senderID]
	return ok
}

// Evaluate runs the gate in fixed order, deny list first, then the allow
// list, then the confidence floor
// an explicit deny wins even for whitelisted senders
func (s Snapshot) Evaluate(senderID string, confidence int) Verdict {
	if s.BlacklistEnabled && s.Blacklisted(senderID) {
		return Verdict{Reason: recdom.DropBlacklisted}
	}
	if s.WhitelistEnabled && !s.Whitelisted(senderID) {
		return Verdict{Reason: recdom.DropNotWhitelisted}
	}
	if confidence < s.ConfidenceThreshold {
		return Verdict{Reason: recdom.DropLowConfidence}
	}
	return Verdict{Allow: true}
}

// Sender is one row of the sender registry
type Sender struct {
	ID            string    `json:"id"`
	Username      string    `json:"username,omitempty"`
	FirstSeen     time.Time `json:"first_seen"`
	LastSeen      time.Time `json:"last_seen"`
	MessageCount  int64     `json:"message_count"`
	IsBlacklisted bool      `json:"is_blacklisted"`
	IsWhitelisted bool      `json:"is_whitelisted"`
}
