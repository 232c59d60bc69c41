// Package service implements the relay worker. Listeners pump account
// streams into a bounded intake queue and dispatchers classify, gate and
// forward each message through the pool
package service

import (
	"context"
	"sync"
	"time"

	"leadrelay/internal/adapters/session"
	"leadrelay/internal/core/classify"
	"leadrelay/internal/core/taxonomy"
	"leadrelay/internal/platform/logger"
	accdom "leadrelay/internal/services/accounts/domain"
	poldom "leadrelay/internal/services/policy/domain"
	recdom "leadrelay/internal/services/records/domain"
	reldom "leadrelay/internal/services/relay/domain"
)

// Config tunes the relay worker
type Config struct {
	// MaxRetries bounds forwarding attempts per message, scheduling waits
	// and failed sends share the same budget
	MaxRetries int

	// Workers is the dispatcher concurrency
	Workers int

	// QueueDepth bounds the intake queue, listeners block when it is full
	QueueDepth int

	// RetryBackoff is the pause between forwarding attempts
	RetryBackoff time.Duration

	// RedialWait is the pause before a listener redials a dead stream
	RedialWait time.Duration

	// SyncEvery is the registry and policy convergence cadence
	SyncEvery time.Duration

	// FlushEvery is the runtime persistence cadence
	FlushEvery time.Duration

	// ReconcileEvery is how often the supervisor trues up listeners
	ReconcileEvery time.Duration

	// DrainTimeout bounds the shutdown drain before in flight work is canceled
	DrainTimeout time.Duration

	// WriteTimeout bounds detached terminal writes
	WriteTimeout time.Duration

	// TaxonomyPath points at an external services.json, empty uses the
	// embedded pack
	TaxonomyPath string
}

// inbound is one observed message tagged with the account that saw it
type inbound struct {
	accountID string
	msg       session.IncomingMessage
}

// Service is the relay worker, it implements domain.WorkerPort
type Service struct {
	cfg Config

	pool    accdom.PoolPort
	syncer  accdom.SyncPort
	policy  poldom.SnapshotPort
	padmin  poldom.AdminPort
	senders poldom.SenderPort
	writer  recdom.WriterPort
	dedup   recdom.DedupPort
	sess    session.Session
	engine  *classify.Engine

	// lastSeq tracks the taxonomy sequence already applied to the engine,
	// only the maintenance goroutine touches it after bootstrap
	lastSeq int64

	log logger.Logger
	now func() time.Time
}

// New constructs the relay worker over its collaborator ports
func New(cfg Config, ports reldom.Ports, engine *classify.Engine) *Service {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = 256
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 2 * time.Second
	}
	if cfg.RedialWait <= 0 {
		cfg.RedialWait = 5 * time.Second
	}
	if cfg.SyncEvery <= 0 {
		cfg.SyncEvery = 15 * time.Second
	}
	if cfg.FlushEvery <= 0 {
		cfg.FlushEvery = 30 * time.Second
	}
	if cfg.ReconcileEvery <= 0 {
		cfg.ReconcileEvery = 5 * time.Second
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if engine == nil {
		panic("relay.Service requires a classify engine")
	}
	return &Service{
		cfg:     cfg,
		pool:    ports.Pool,
		syncer:  ports.Sync,
		policy:  ports.Policy,
		padmin:  ports.Admin,
		senders: ports.Senders,
		writer:  ports.Writer,
		dedup:   ports.Dedup,
		sess:    ports.Session,
		engine:  engine,
		log:     *logger.Named("relay"),
		now:     time.Now,
	}
}

// Run boots the worker and blocks until ctx cancels.
// Startup fails closed, an unreadable registry or policy aborts before any
// listener dials out
func (s *Service) Run(ctx context.Context) error {
	loaded, err := s.syncer.Load(ctx)
	if err != nil {
		return err
	}
	if _, err := s.padmin.Reload(ctx); err != nil {
		return err
	}
	s.syncTaxonomy()
	s.log.Info().Int("accounts", loaded).Msg("relay bootstrapped")

	intake := make(chan inbound, s.cfg.QueueDepth)

	// producers stop first on shutdown, workers keep the queue draining on
	// their own context so the drain budget applies
	prodCtx, stopProducers := context.WithCancel(context.Background())
	defer stopProducers()
	workCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	var producers sync.WaitGroup
	var workers sync.WaitGroup

	for i := 0; i < s.cfg.Workers; i++ {
		workers.Add(1)
		go s.runDispatcher(workCtx, i, intake, &workers)
	}

	producers.Add(1)
	go s.superviseListeners(prodCtx, intake, &producers)

	producers.Add(1)
	go s.runMaintenance(prodCtx, &producers)

	<-ctx.Done()
	s.log.Info().Msg("relay stopping")

	// intake closes only after every producer is gone
	stopProducers()
	producers.Wait()
	close(intake)

	drained := make(chan struct{})
	go func() { workers.Wait(); close(drained) }()
	select {
	case <-drained:
	case <-time.After(s.cfg.DrainTimeout):
		s.log.Warn().Dur("budget", s.cfg.DrainTimeout).Msg("drain budget exhausted, canceling in flight sends")
		stopWorkers()
		<-drained
	}

	// whatever a forced stop left in the queue becomes a terminal failure
	for in := range intake {
		s.failUndrained(in)
	}

	fctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
	defer cancel()
	if err := s.syncer.SaveRuntime(fctx); err != nil {
		s.log.Error().Err(err).Msg("final runtime flush failed")
	}
	s.log.Info().Msg("relay stopped")
	return nil
}

// runMaintenance converges the pool with the registry and flushes runtime
// state on fixed cadences
func (s *Service) runMaintenance(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	syncTick := time.NewTicker(s.cfg.SyncEvery)
	defer syncTick.Stop()
	flushTick := time.NewTicker(s.cfg.FlushEvery)
	defer flushTick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-syncTick.C:
			if err := s.syncer.Sync(ctx); err != nil {
				s.log.Warn().Err(err).Msg("registry sync failed")
			}
			if _, err := s.padmin.Reload(ctx); err != nil {
				s.log.Warn().Err(err).Msg("policy reload failed")
				continue
			}
			s.syncTaxonomy()
		case <-flushTick.C:
			if err := s.syncer.SaveRuntime(ctx); err != nil {
				s.log.Warn().Err(err).Msg("runtime flush failed")
			}
		}
	}
}

// syncTaxonomy swaps a fresh pattern pack into the engine when the policy
// snapshot carries a new taxonomy sequence. Load failures keep the current
// pack and retry on the next tick
func (s *Service) syncTaxonomy() {
	seq := s.policy.Snapshot().TaxonomySeq
	if seq == s.lastSeq {
		return
	}
	pack, err := s.loadPack()
	if err != nil {
		s.log.Error().Err(err).Int64("seq", seq).Msg("taxonomy reload failed, keeping current pack")
		return
	}
	s.engine.Swap(pack)
	s.lastSeq = seq
	s.log.Info().Int64("seq", seq).Int("services", len(pack.Services)).Msg("taxonomy pack reloaded")
}

func (s *Service) loadPack() (*taxonomy.Pack, error) {
	if s.cfg.TaxonomyPath != "" {
		return taxonomy.LoadFile(s.cfg.TaxonomyPath)
	}
	return taxonomy.Load()
}

// sleep waits d unless ctx cancels first, true means the full wait elapsed
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
