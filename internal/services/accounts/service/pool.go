// Package service implements the worker account pool and its registry bridge
package service

import (
	"sort"
	"sync"
	"time"

	"leadrelay/internal/platform/logger"
	"leadrelay/internal/services/accounts/domain"
)

const window = time.Hour

// Config carries the fixed pool knobs
// HourlyLimit and FloodWaitMultiplier are fallbacks used when no limits
// source is wired, the live values come from the policy snapshot
type Config struct {
	HourlyLimit         int
	FloodWaitMultiplier float64
	ErrorCeiling        int
}

// entry is one arena slot, its mutex serializes all mutation of the account
type entry struct {
	mu sync.Mutex

	id             string
	credentialsRef string
	state          domain.State
	cooldownUntil  time.Time
	sends          []time.Time // trailing hour, oldest first
	consecutiveErr int
	totalSent      int64
	lastUsed       time.Time
	addedAt        time.Time

	// busy holds the entry between Reserve and Release so concurrent
	// dispatchers never interleave sends on one account
	busy bool
}

// Pool owns the account arena
// the arena map is guarded by mu for add, remove and iteration,
// everything else locks only the entry it touches
type Pool struct {
	mu    sync.RWMutex
	arena map[string]*entry

	cfg    Config
	limits func() domain.Limits
	now    func() time.Time
	log    logger.Logger
}

// NewPool constructs an empty pool
// limits may be nil, the Config fallbacks apply then
func NewPool(cfg Config, limits func() domain.Limits) *Pool {
	if cfg.HourlyLimit <= 0 {
		cfg.HourlyLimit = 100
	}
	if cfg.FloodWaitMultiplier <= 0 {
		cfg.FloodWaitMultiplier = 1.5
	}
	if cfg.ErrorCeiling <= 0 {
		cfg.ErrorCeiling = 5
	}
	p := &Pool{
		arena:  map[string]*entry{},
		cfg:    cfg,
		limits: limits,
		now:    time.Now,
		log:    *logger.Named("pool"),
	}
	if p.limits == nil {
		p.limits = func() domain.Limits {
			return domain.Limits{HourlyLimit: cfg.HourlyLimit, FloodWaitMultiplier: cfg.FloodWaitMultiplier}
		}
	}
	return p
}

// Add registers a new entry in Disconnected state
func (p *Pool) Add(id, credentialsRef string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.arena[id]; ok {
		return false
	}
	p.arena[id] = &entry{
		id:             id,
		credentialsRef: credentialsRef,
		state:          domain.StateDisconnected,
		addedAt:        p.now().UTC(),
	}
	return true
}

// Remove drops the entry entirely
func (p *Pool) Remove(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.arena[id]; !ok {
		return false
	}
	delete(p.arena, id)
	return true
}

func (p *Pool) get(id string) (*entry, bool) {
	p.mu.RLock()
	e, ok := p.arena[id]
	p.mu.RUnlock()
	return e, ok
}

// MarkConnecting notes that a listener is dialing the account session
func (p *Pool) MarkConnecting(id string) {
	e, ok := p.get(id)
	if !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == domain.StateDisconnected {
		e.state = domain.StateConnecting
	}
}

// MarkActive moves the account into rotation when its session reports ready
// an unexpired cooldown keeps the account in Cooling instead
func (p *Pool) MarkActive(id string) {
	e, ok := p.get(id)
	if !ok {
		return
	}
	now := p.now().UTC()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == domain.StateDisabled {
		return
	}
	if e.cooldownUntil.After(now) {
		e.state = domain.StateCooling
		return
	}
	e.cooldownUntil = time.Time{}
	e.state = domain.StateActive
}

// MarkDisconnected parks the account until its listener redials
func (p *Pool) MarkDisconnected(id string) {
	e, ok := p.get(id)
	if !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == domain.StateDisabled {
		return
	}
	e.state = domain.StateDisconnected
}

// RecordSuccess counts a completed send and clears the error streak
func (p *Pool) RecordSuccess(id string) {
	e, ok := p.get(id)
	if !ok {
		return
	}
	now := p.now().UTC()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.trim(now)
	e.sends = append(e.sends, now)
	e.lastUsed = now
	e.totalSent++
	e.consecutiveErr = 0
}

// RecordFailure applies a failure class to the account state machine
// auth failures and error streaks at the ceiling disable the account,
// flood control moves it to Cooling for wait times the multiplier
func (p *Pool) RecordFailure(id string, class domain.FailureClass, wait time.Duration) {
	e, ok := p.get(id)
	if !ok {
		return
	}
	lim := p.limits()
	mult := lim.FloodWaitMultiplier
	if mult <= 0 {
		mult = p.cfg.FloodWaitMultiplier
	}
	now := p.now().UTC()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == domain.StateDisabled {
		return
	}
	e.consecutiveErr++

	switch {
	case class == domain.FailureAuth:
		e.state = domain.StateDisabled
		p.log.Error().Str("account", id).Msg("account disabled after auth failure")
	case e.consecutiveErr >= p.cfg.ErrorCeiling:
		e.state = domain.StateDisabled
		p.log.Error().Str("account", id).Int("errors", e.consecutiveErr).Msg("account disabled after repeated failures")
	case class == domain.FailureRateLimited:
		cool := time.Duration(float64(wait) * mult)
		e.state = domain.StateCooling
		e.cooldownUntil = now.Add(cool)
		p.log.Warn().Str("account", id).Dur("cooldown", cool).Msg("account cooling after flood wait")
	}
}

// SetDisabled pulls the account from rotation until an explicit re enable
func (p *Pool) SetDisabled(id string) bool {
	e, ok := p.get(id)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = domain.StateDisabled
	return true
}

// SetEnabled clears Disabled back to Disconnected so a listener can redial
func (p *Pool) SetEnabled(id string) bool {
	e, ok := p.get(id)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != domain.StateDisabled {
		return false
	}
	e.state = domain.StateDisconnected
	e.cooldownUntil = time.Time{}
	e.consecutiveErr = 0
	return true
}

// ListEligible returns Active accounts below the hourly limit, ordered by
// smallest trailing hour count, then least recently used, then id
func (p *Pool) ListEligible() []domain.Eligible {
	lim := p.limits()
	hourly := lim.HourlyLimit
	if hourly <= 0 {
		hourly = p.cfg.HourlyLimit
	}
	now := p.now().UTC()

	p.mu.RLock()
	entries := make([]*entry, 0, len(p.arena))
	for _, e := range p.arena {
		entries = append(entries, e)
	}
	p.mu.RUnlock()

	out := make([]domain.Eligible, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		e.refresh(now)
		if e.state == domain.StateActive {
			e.trim(now)
			if len(e.sends) < hourly {
				out = append(out, domain.Eligible{ID: e.id, WindowCount: len(e.sends), LastUsed: e.lastUsed})
			}
		}
		e.mu.Unlock()
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].WindowCount != out[j].WindowCount {
			return out[i].WindowCount < out[j].WindowCount
		}
		if !out[i].LastUsed.Equal(out[j].LastUsed) {
			return out[i].LastUsed.Before(out[j].LastUsed)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Reserve claims the eligible account with the most headroom for one send
// the claim lasts until Release, candidates already held are skipped
func (p *Pool) Reserve() (string, bool) {
	lim := p.limits()
	hourly := lim.HourlyLimit
	if hourly <= 0 {
		hourly = p.cfg.HourlyLimit
	}

	// walk candidates in eligibility order and take the first that is still
	// free when rechecked under its own lock
	for _, cand := range p.ListEligible() {
		e, ok := p.get(cand.ID)
		if !ok {
			continue
		}
		now := p.now().UTC()
		e.mu.Lock()
		e.refresh(now)
		e.trim(now)
		if e.state == domain.StateActive && !e.busy && len(e.sends) < hourly {
			e.busy = true
			e.mu.Unlock()
			return e.id, true
		}
		e.mu.Unlock()
	}
	return "", false
}

// Release frees an account claimed by Reserve
func (p *Pool) Release(id string) {
	e, ok := p.get(id)
	if !ok {
		return
	}
	e.mu.Lock()
	e.busy = false
	e.mu.Unlock()
}

// Get returns one account view
func (p *Pool) Get(id string) (domain.Account, bool) {
	e, ok := p.get(id)
	if !ok {
		return domain.Account{}, false
	}
	now := p.now().UTC()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refresh(now)
	e.trim(now)
	return e.view(), true
}

// Snapshot returns a copy of every entry, sorted by id
func (p *Pool) Snapshot() []domain.Account {
	now := p.now().UTC()

	p.mu.RLock()
	entries := make([]*entry, 0, len(p.arena))
	for _, e := range p.arena {
		entries = append(entries, e)
	}
	p.mu.RUnlock()

	out := make([]domain.Account, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		e.refresh(now)
		e.trim(now)
		out = append(out, e.view())
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// restoreState carries persisted runtime fields reapplied at startup
type restoreState struct {
	cooldownUntil  time.Time
	windowCount    int
	totalSent      int64
	lastUsed       time.Time
	consecutiveErr int
	now            time.Time
}

// restore reapplies persisted counters to a freshly added entry.
// Individual send timestamps are not persisted, so the stored window count
// seeds synthetic sends stamped at last_used, the hourly cap then stays
// honest across a restart and the seeds age out together
func (p *Pool) restore(id string, st restoreState) {
	e, ok := p.get(id)
	if !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.totalSent = st.totalSent
	e.lastUsed = st.lastUsed
	e.consecutiveErr = st.consecutiveErr
	if st.windowCount > 0 && st.lastUsed.After(st.now.Add(-window)) {
		e.sends = make([]time.Time, st.windowCount)
		for i := range e.sends {
			e.sends[i] = st.lastUsed
		}
	}
	if st.cooldownUntil.After(st.now) {
		e.state = domain.StateCooling
		e.cooldownUntil = st.cooldownUntil
	}
}

// refresh promotes an expired cooldown back to Active, called under e.mu
func (e *entry) refresh(now time.Time) {
	if e.state == domain.StateCooling && !e.cooldownUntil.After(now) {
		e.state = domain.StateActive
		e.cooldownUntil = time.Time{}
	}
}

// trim drops sends older than the trailing hour, called under e.mu
func (e *entry) trim(now time.Time) {
	cutoff := now.Add(-window)
	i := 0
	for i < len(e.sends) && !e.sends[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return
	}
	if i == len(e.sends) {
		e.sends = nil
		return
	}
	e.sends = append(e.sends[:0:0], e.sends[i:]...)
}

// view copies the entry into a DTO, called under e.mu
func (e *entry) view() domain.Account {
	a := domain.Account{
		ID:             e.id,
		CredentialsRef: e.credentialsRef,
		Enabled:        e.state != domain.StateDisabled,
		State:          e.state,
		CooldownUntil:  e.cooldownUntil,
		WindowCount:    len(e.sends),
		ConsecutiveErr: e.consecutiveErr,
		TotalSent:      e.totalSent,
		LastUsed:       e.lastUsed,
		AddedAt:        e.addedAt,
	}
	if len(e.sends) > 0 {
		a.WindowStart = e.sends[0]
	}
	return a
}
