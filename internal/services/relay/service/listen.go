package service

import (
	"context"
	"sync"
	"time"

	"leadrelay/internal/adapters/session"
	accdom "leadrelay/internal/services/accounts/domain"
)

// superviseListeners keeps one listener per pool account that is not
// Disabled. The set is trued up on a fixed cadence so registry changes
// applied by maintenance show up as started or stopped listeners
func (s *Service) superviseListeners(ctx context.Context, intake chan<- inbound, wg *sync.WaitGroup) {
	defer wg.Done()

	var listeners sync.WaitGroup
	cancels := map[string]context.CancelFunc{}

	reconcile := func() {
		want := map[string]bool{}
		for _, a := range s.pool.Snapshot() {
			if a.State != accdom.StateDisabled {
				want[a.ID] = true
			}
		}
		for id, cancel := range cancels {
			if !want[id] {
				cancel()
				delete(cancels, id)
			}
		}
		for id := range want {
			if _, running := cancels[id]; running {
				continue
			}
			lctx, cancel := context.WithCancel(ctx)
			cancels[id] = cancel
			listeners.Add(1)
			go s.runListener(lctx, id, intake, &listeners)
		}
	}

	reconcile()
	tick := time.NewTicker(s.cfg.ReconcileEvery)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			for _, cancel := range cancels {
				cancel()
			}
			listeners.Wait()
			return
		case <-tick.C:
			reconcile()
		}
	}
}

// runListener dials the account stream and pumps it into intake, redialing
// until ctx cancels or the account leaves rotation
func (s *Service) runListener(ctx context.Context, id string, intake chan<- inbound, wg *sync.WaitGroup) {
	defer wg.Done()
	log := s.log.With().Str("account", id).Logger()

	for ctx.Err() == nil {
		if a, ok := s.pool.Get(id); !ok || a.State == accdom.StateDisabled {
			return
		}

		s.pool.MarkConnecting(id)
		msgs, events, err := s.sess.Subscribe(ctx, id)
		if err != nil {
			s.pool.MarkDisconnected(id)
			log.Warn().Err(err).Msg("subscribe failed")
			if !sleep(ctx, s.cfg.RedialWait) {
				return
			}
			continue
		}
		s.pool.MarkActive(id)
		log.Info().Msg("account stream live")

		s.pump(ctx, id, msgs, events, intake)

		// the stream ended, a disabled account stays down, anything else
		// parks as Disconnected and redials
		if a, ok := s.pool.Get(id); !ok || a.State == accdom.StateDisabled {
			log.Info().Msg("account left rotation")
			return
		}
		s.pool.MarkDisconnected(id)
		log.Info().Msg("account stream ended, redialing")
		if !sleep(ctx, s.cfg.RedialWait) {
			return
		}
	}
}

// pump forwards messages and applies lifecycle events until both stream
// channels close or ctx cancels
func (s *Service) pump(ctx context.Context, id string, msgs <-chan session.IncomingMessage, events <-chan session.Event, intake chan<- inbound) {
	for msgs != nil || events != nil {
		select {
		case <-ctx.Done():
			return

		case m, ok := <-msgs:
			if !ok {
				msgs = nil
				continue
			}
			// a full intake queue blocks the listener, backpressure reaches
			// the provider through the paused poll loop
			select {
			case intake <- inbound{accountID: id, msg: m}:
			case <-ctx.Done():
				return
			}

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			s.handleEvent(id, ev)
			if ev.Kind == session.EventAuthFailed {
				return
			}
		}
	}
}

// handleEvent maps one session lifecycle event onto the pool state machine
func (s *Service) handleEvent(id string, ev session.Event) {
	switch ev.Kind {
	case session.EventConnected:
		s.pool.MarkActive(id)
	case session.EventDisconnected:
		s.pool.MarkDisconnected(id)
	case session.EventRateLimited:
		s.noteFailure(id, accdom.FailureRateLimited, ev.Wait)
	case session.EventAuthFailed:
		s.noteFailure(id, accdom.FailureAuth, 0)
	}
}

// noteFailure applies a failure to the pool and, when the account ends up
// Disabled, makes the disable durable so sync ticks and restarts keep it out
// of rotation
func (s *Service) noteFailure(id string, class accdom.FailureClass, wait time.Duration) {
	s.pool.RecordFailure(id, class, wait)
	if a, ok := s.pool.Get(id); ok && a.State == accdom.StateDisabled {
		s.persistDisable(id)
	}
}

func (s *Service) persistDisable(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
	defer cancel()
	if err := s.syncer.PersistDisabled(ctx, id); err != nil {
		s.log.Error().Err(err).Str("account", id).Msg("persist disable failed")
	}
}
