// Package domain holds DTOs for the accounts admin http and service contracts
package domain

// AccountView is one registry row with its last flushed runtime state
type AccountView struct {
	ID             string `json:"id" example:"acct-1"`
	Enabled        bool   `json:"enabled" example:"true"`
	State          string `json:"state" example:"active"`
	CooldownUntil  string `json:"cooldown_until,omitempty" example:"2025-08-20T12:30:00Z"`
	WindowCount    int    `json:"window_count" example:"12"`
	ConsecutiveErr int    `json:"consecutive_errors" example:"0"`
	TotalSent      int64  `json:"total_sent" example:"1930"`
	LastUsed       string `json:"last_used,omitempty" example:"2025-08-20T12:29:40Z"`
	AddedAt        string `json:"added_at" example:"2025-06-01T09:00:00Z"`
}

// AddAccountInput registers one worker account
type AddAccountInput struct {
	ID             string `json:"id" validate:"required,min=1,max=64" example:"acct-1"`
	CredentialsRef string `json:"credentials_ref" validate:"required,min=1,max=200" example:"env:LEADRELAY_BOT_TOKEN_1"`
}

// StateInput flips the enabled flag. Disabling pulls the account out of the
// relay rotation on its next registry sync; enabling clears a Disabled state
type StateInput struct {
	Enabled *bool `json:"enabled" validate:"required" example:"true"`
}
