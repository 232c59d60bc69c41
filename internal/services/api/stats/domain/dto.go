// Package domain holds DTOs for stats http and service contracts
package domain

// OutcomeTotals counts terminal records by outcome inside one window.
// Seen is the total across all outcomes
type OutcomeTotals struct {
	Seen      int64 `json:"seen" example:"1204"`
	Forwarded int64 `json:"forwarded" example:"311"`
	Dropped   int64 `json:"dropped" example:"851"`
	Failed    int64 `json:"failed" example:"42"`
}

// ServiceCount is one service ranked by forwarded leads
type ServiceCount struct {
	Service   string `json:"service" example:"assignments"`
	Forwarded int64  `json:"forwarded" example:"97"`
}

// AccountPerf pairs an account's durable counters with its forwarded totals.
// Forwarded comes from the record store, TotalSent from the registry; the two
// can drift by whatever the relay has not flushed yet
type AccountPerf struct {
	AccountID     string `json:"account_id" example:"acct-1"`
	State         string `json:"state" example:"active"`
	Forwarded     int64  `json:"forwarded" example:"120"`
	TotalSent     int64  `json:"total_sent" example:"120"`
	LastForwarded string `json:"last_forwarded,omitempty" example:"2025-08-20T17:04:05Z"`
}

// Overview is the whole stats surface in one response
type Overview struct {
	ActiveAccounts int            `json:"active_accounts" example:"3"`
	TotalAccounts  int            `json:"total_accounts" example:"5"`
	AllTime        OutcomeTotals  `json:"all_time"`
	Last24h        OutcomeTotals  `json:"last_24h"`
	TopServices    []ServiceCount `json:"top_services"`
	Accounts       []AccountPerf  `json:"accounts"`
	GeneratedAt    string         `json:"generated_at" example:"2025-08-21T09:00:00Z"`
}
