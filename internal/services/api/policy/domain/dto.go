// Package domain holds DTOs for the policy admin http and service contracts
package domain

// PolicyView mirrors the live policy snapshot
type PolicyView struct {
	ConfidenceThreshold int     `json:"confidence_threshold" example:"70"`
	HourlyLimit         int     `json:"hourly_limit" example:"100"`
	FloodWaitMultiplier float64 `json:"flood_wait_multiplier" example:"1.5"`
	BlacklistEnabled    bool    `json:"blacklist_enabled" example:"true"`
	WhitelistEnabled    bool    `json:"whitelist_enabled" example:"false"`
	MinLength           int     `json:"min_length" example:"10"`
	MaxLength           int     `json:"max_length" example:"10000"`
	TargetChannel       string  `json:"target_channel" example:"-1001234567890"`
	TaxonomySeq         int64   `json:"taxonomy_seq" example:"3"`
	Version             int64   `json:"version" example:"12"`
	LoadedAt            string  `json:"loaded_at" example:"2025-08-20T12:00:00Z"`
	BlacklistSize       int     `json:"blacklist_size" example:"4"`
	WhitelistSize       int     `json:"whitelist_size" example:"9"`
}

// UpdateInput carries one or more policy settings, applied in key order.
// Application stops at the first rejected setting; keys before it stay applied
type UpdateInput struct {
	Settings map[string]string `json:"settings" validate:"required,min=1"`
}

// FlagInput flips a sender list flag
type FlagInput struct {
	SenderID string `json:"sender_id" validate:"required,min=1,max=64" example:"7439021"`
	Flagged  *bool  `json:"flagged" validate:"required" example:"true"`
}

// SendersInput pages the sender registry, most recently seen first
type SendersInput struct {
	Limit int `json:"limit,omitempty" validate:"omitempty,min=1,max=500" example:"100"`
}

// SenderView is one sender registry row
type SenderView struct {
	ID            string `json:"id" example:"7439021"`
	Username      string `json:"username,omitempty" example:"student_42"`
	FirstSeen     string `json:"first_seen" example:"2025-07-02T18:12:00Z"`
	LastSeen      string `json:"last_seen" example:"2025-08-20T11:58:00Z"`
	MessageCount  int64  `json:"message_count" example:"37"`
	IsBlacklisted bool   `json:"is_blacklisted" example:"false"`
	IsWhitelisted bool   `json:"is_whitelisted" example:"true"`
}
