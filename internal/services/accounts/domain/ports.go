package domain

import (
	"context"
	"time"
)

// PoolPort is the scheduling surface the dispatcher and listeners drive
// all mutation is serialized per account, reads take a brief shared snapshot
type PoolPort interface {
	// ListEligible returns Active accounts with send headroom, ordered for the scheduler
	ListEligible() []Eligible

	// Reserve claims the eligible account with the most headroom for one send
	// false means no account currently has headroom
	Reserve() (string, bool)

	// Release frees an account claimed by Reserve
	Release(id string)

	// RecordSuccess counts a completed send on the account
	RecordSuccess(id string)

	// RecordFailure applies a failure class to the account state machine
	// wait is the provider suggested backoff and only meaningful for FailureRateLimited
	RecordFailure(id string, class FailureClass, wait time.Duration)

	// MarkConnecting notes that a listener is dialing the account session
	MarkConnecting(id string)

	// MarkActive moves the account into rotation when its session reports ready
	MarkActive(id string)

	// MarkDisconnected parks the account until its listener redials
	MarkDisconnected(id string)

	// Get returns one account view
	Get(id string) (Account, bool)

	// Snapshot returns a copy of every entry, sorted by id
	Snapshot() []Account
}

// RegistryPort is the durable admin surface over the account registry
// mutations touch postgres only, the live pool converges through SyncPort
type RegistryPort interface {
	List(ctx context.Context) ([]Account, error)
	Add(ctx context.Context, id, credentialsRef string) (Account, error)
	Remove(ctx context.Context, id string) error
	SetDisabled(ctx context.Context, id string) error
	SetEnabled(ctx context.Context, id string) error
}

// SyncPort keeps the live pool converged with the registry
type SyncPort interface {
	// Load seeds the pool arena from the registry at startup and returns the entry count
	Load(ctx context.Context) (int, error)

	// Sync applies registry changes to the arena, additions, removals and enable flips
	Sync(ctx context.Context) error

	// SaveRuntime flushes the current pool state back to the registry
	SaveRuntime(ctx context.Context) error

	// PersistDisabled makes a runtime disable durable so it survives sync and restart
	PersistDisabled(ctx context.Context, id string) error
}
