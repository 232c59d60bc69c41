// Package memory provides an in-process session.Session for tests and local
// runs. Messages and events are pushed by the test; send outcomes are scripted
// per account and default to SendOK
package memory

import (
	"context"
	"sync"

	"leadrelay/internal/adapters/session"
	perr "leadrelay/internal/platform/errors"
)

const chanBuf = 256

// SendCall records one Send invocation
type SendCall struct {
	AccountID string
	Channel   string
	Content   string
}

type stream struct {
	msgs   chan session.IncomingMessage
	events chan session.Event
	closed bool
}

// Hub implements session.Session in memory
type Hub struct {
	mu      sync.Mutex
	streams map[string]*stream
	queued  map[string][]session.SendResult
	sends   []SendCall
}

// New constructs an empty Hub
func New() *Hub {
	return &Hub{
		streams: make(map[string]*stream),
		queued:  make(map[string][]session.SendResult),
	}
}

// Subscribe opens a stream for the account and reports it connected.
// The channels close when ctx is canceled
func (h *Hub) Subscribe(ctx context.Context, accountID string) (<-chan session.IncomingMessage, <-chan session.Event, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, dup := h.streams[accountID]; dup {
		return nil, nil, perr.Conflictf("memory session: account %s already subscribed", accountID)
	}

	st := &stream{
		msgs:   make(chan session.IncomingMessage, chanBuf),
		events: make(chan session.Event, chanBuf),
	}
	st.events <- session.Event{Kind: session.EventConnected}
	h.streams[accountID] = st

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		defer h.mu.Unlock()
		if cur, ok := h.streams[accountID]; ok && cur == st {
			delete(h.streams, accountID)
		}
		st.closed = true
		close(st.msgs)
		close(st.events)
	}()

	return st.msgs, st.events, nil
}

// Send records the call and pops the next scripted result for the account
func (h *Hub) Send(_ context.Context, accountID, channel, content string) session.SendResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sends = append(h.sends, SendCall{AccountID: accountID, Channel: channel, Content: content})

	q := h.queued[accountID]
	if len(q) == 0 {
		return session.SendResult{Status: session.SendOK}
	}
	res := q[0]
	h.queued[accountID] = q[1:]
	return res
}

// Push delivers a message on the account's stream
func (h *Hub) Push(accountID string, m session.IncomingMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, ok := h.streams[accountID]
	if !ok || st.closed {
		return perr.NotFoundf("memory session: no stream for account %s", accountID)
	}
	select {
	case st.msgs <- m:
		return nil
	default:
		return perr.Unavailablef("memory session: stream for account %s is full", accountID)
	}
}

// Emit delivers a lifecycle event on the account's stream
func (h *Hub) Emit(accountID string, ev session.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, ok := h.streams[accountID]
	if !ok || st.closed {
		return perr.NotFoundf("memory session: no stream for account %s", accountID)
	}
	select {
	case st.events <- ev:
		return nil
	default:
		return perr.Unavailablef("memory session: event stream for account %s is full", accountID)
	}
}

// QueueSend scripts the next send outcomes for the account, FIFO
func (h *Hub) QueueSend(accountID string, rs ...session.SendResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queued[accountID] = append(h.queued[accountID], rs...)
}

// Sends returns a copy of all recorded send calls
func (h *Hub) Sends() []SendCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]SendCall, len(h.sends))
	copy(out, h.sends)
	return out
}

// Subscribed reports whether the account currently has a live stream
func (h *Hub) Subscribed(accountID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.streams[accountID]
	return ok
}
