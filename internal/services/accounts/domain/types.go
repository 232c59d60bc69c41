// Package domain defines the account pool types and ports
package domain

import "time"

// State is the lifecycle state of one worker account
type State string

// Account lifecycle states
const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateActive       State = "active"
	StateCooling      State = "cooling"
	StateDisabled     State = "disabled"
)

// FailureClass buckets send and session failures for pool accounting
type FailureClass string

const (
	// FailureTransient covers timeouts and provider hiccups, the account stays in rotation
	FailureTransient FailureClass = "transient"

	// FailureRateLimited is provider flood control with a suggested wait, the account cools down
	FailureRateLimited FailureClass = "rate_limited"

	// FailureAuth is a credential rejection, the account leaves rotation until re enabled
	FailureAuth FailureClass = "auth"
)

// Account is a point in time view of one pool entry
// runtime fields are meaningful only for the states that use them
type Account struct {
	ID             string    `json:"id"`
	CredentialsRef string    `json:"credentials_ref,omitempty"`
	Enabled        bool      `json:"enabled"`
	State          State     `json:"state"`
	CooldownUntil  time.Time `json:"cooldown_until,omitzero"`
	WindowCount    int       `json:"window_count"`
	WindowStart    time.Time `json:"window_start,omitzero"`
	ConsecutiveErr int       `json:"consecutive_errors"`
	TotalSent      int64     `json:"total_sent"`
	LastUsed       time.Time `json:"last_used,omitzero"`
	AddedAt        time.Time `json:"added_at"`
}

// Eligible is one row of the scheduler view
// the pool returns these ordered by headroom, smallest trailing hour count
// first, ties to the least recently used account
type Eligible struct {
	ID          string
	WindowCount int
	LastUsed    time.Time
}

// Limits are the pool knobs read from the live policy snapshot on every decision
type Limits struct {
	HourlyLimit         int
	FloodWaitMultiplier float64
}
