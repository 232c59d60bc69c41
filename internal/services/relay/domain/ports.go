// Package domain defines the relay worker surface
package domain

import (
	"context"

	"leadrelay/internal/adapters/session"
	accdom "leadrelay/internal/services/accounts/domain"
	poldom "leadrelay/internal/services/policy/domain"
	recdom "leadrelay/internal/services/records/domain"
)

// WorkerPort is the external port for the relay daemon
type WorkerPort interface {
	// Run blocks until ctx cancels, then drains in flight work before returning
	Run(ctx context.Context) error
}

// Ports are dependencies injected into the relay module
type Ports struct {
	Pool    accdom.PoolPort     // required
	Sync    accdom.SyncPort     // required
	Policy  poldom.SnapshotPort // required
	Admin   poldom.AdminPort    // required, the worker only calls Reload
	Senders poldom.SenderPort   // required
	Writer  recdom.WriterPort   // required
	Dedup   recdom.DedupPort    // required
	Session session.Session     // required
}
