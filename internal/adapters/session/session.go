// Package session defines the port to the external chat network.
// One Session multiplexes any number of worker accounts; every call names
// the account it acts for
package session

import (
	"context"
	"time"
)

// IncomingMessage is one message observed in a monitored group chat
type IncomingMessage struct {
	MessageID string
	ChatID    string
	SenderID  string
	Username  string
	Text      string
	SentAt    time.Time
}

// EventKind enumerates session lifecycle signals
type EventKind string

const (
	// EventConnected means the account's stream is live
	EventConnected EventKind = "connected"
	// EventDisconnected means the stream dropped; the adapter keeps retrying
	EventDisconnected EventKind = "disconnected"
	// EventRateLimited means the provider asked this account to pause
	EventRateLimited EventKind = "rate_limited"
	// EventAuthFailed means the account's credentials were rejected; terminal
	EventAuthFailed EventKind = "auth_failed"
)

// Event is a lifecycle signal for one subscribed account
type Event struct {
	Kind EventKind
	// Wait is the provider-suggested pause, set only for EventRateLimited
	Wait time.Duration
}

// SendStatus is the typed outcome of a send attempt
type SendStatus string

const (
	// SendOK means the provider accepted the message
	SendOK SendStatus = "ok"
	// SendRateLimited means the provider refused and suggested a wait
	SendRateLimited SendStatus = "rate_limited"
	// SendAuthFailed means the account's credentials were rejected
	SendAuthFailed SendStatus = "auth_failed"
	// SendTransient covers timeouts, transport failures and 5xx responses
	SendTransient SendStatus = "transient_error"
)

// SendResult is the outcome of one send attempt. Retry decisions belong to
// the caller; the adapter never retries on its own
type SendResult struct {
	Status SendStatus
	// Wait is the provider-suggested pause, set only for SendRateLimited
	Wait time.Duration
	// Err carries the diagnostic cause for non-OK statuses
	Err error
}

// Ok reports whether the send was accepted
func (r SendResult) Ok() bool { return r.Status == SendOK }

// Session is the chat network port.
//
// Subscribe opens the account's update stream. Messages and events flow until
// ctx is canceled or the account fails authentication; both channels close
// when the stream ends. Send delivers content to a channel through the named
// account, blocking up to the adapter's timeout
type Session interface {
	Subscribe(ctx context.Context, accountID string) (<-chan IncomingMessage, <-chan Event, error)
	Send(ctx context.Context, accountID, channel, content string) SendResult
}
