package service

import (
	"context"
	"sync"
	"unicode/utf8"

	"leadrelay/internal/adapters/session"
	accdom "leadrelay/internal/services/accounts/domain"
	recdom "leadrelay/internal/services/records/domain"
)

// runDispatcher drains intake until the channel closes or the worker context
// is force-canceled
func (s *Service) runDispatcher(ctx context.Context, n int, intake <-chan inbound, wg *sync.WaitGroup) {
	defer wg.Done()
	s.log.Debug().Int("dispatcher", n).Msg("dispatcher up")
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-intake:
			if !ok {
				return
			}
			s.process(ctx, in)
		}
	}
}

// process takes one observed message through dedup, the length gates,
// classification and the policy gate, then hands survivors to forward.
// Every path ends in exactly one terminal record
func (s *Service) process(ctx context.Context, in inbound) {
	m := in.msg
	rec := recdom.Record{
		ObservedAt: m.SentAt,
		ObservedBy: in.accountID,
		ChatID:     m.ChatID,
		MessageID:  m.MessageID,
		SenderID:   m.SenderID,
		SenderName: m.Username,
		Text:       m.Text,
	}

	first, err := s.dedup.Claim(ctx, m.ChatID, m.MessageID)
	if err != nil {
		// a dedup outage must not stall the pipeline, admit the message
		s.log.Warn().Err(err).Msg("dedup claim failed, admitting message")
		first = true
	}
	if !first {
		s.drop(rec, recdom.DropDuplicate)
		return
	}

	at := m.SentAt
	if at.IsZero() {
		at = s.now().UTC()
	}
	if err := s.senders.Note(ctx, m.SenderID, m.Username, at); err != nil {
		s.log.Warn().Err(err).Str("sender", m.SenderID).Msg("sender note failed")
	}

	// one snapshot per message so the gates and the target channel agree
	snap := s.policy.Snapshot()
	n := utf8.RuneCountInString(m.Text)
	if n < snap.MinLength {
		s.drop(rec, recdom.DropTooShort)
		return
	}
	if snap.MaxLength > 0 && n > snap.MaxLength {
		s.drop(rec, recdom.DropTooLong)
		return
	}

	res := s.engine.Classify(m.Text)
	rec.Language = string(res.Language)
	rec.Service = res.Service
	rec.Confidence = res.Confidence
	rec.Urgency = res.Urgency

	if !res.Matched() {
		s.drop(rec, recdom.DropNoService)
		return
	}
	if v := snap.Evaluate(m.SenderID, res.Confidence); !v.Allow {
		s.drop(rec, v.Reason)
		return
	}

	s.forward(ctx, rec, snap.TargetChannel)
}

// forward retries across pool accounts until one send lands or the budget
// burns out. Scheduling misses and failed sends spend the same budget.
// Once a send is accepted the message is final, even if the record write
// fails afterwards
func (s *Service) forward(ctx context.Context, rec recdom.Record, channel string) {
	content := digest(rec)

	attempts := 0
	for attempts < s.cfg.MaxRetries && ctx.Err() == nil {
		attempts++

		id, ok := s.pool.Reserve()
		if !ok {
			s.log.Debug().Int("attempt", attempts).Msg("no account with headroom")
			if attempts < s.cfg.MaxRetries && !sleep(ctx, s.cfg.RetryBackoff) {
				break
			}
			continue
		}

		res := s.sess.Send(ctx, id, channel, content)
		if res.Ok() {
			s.pool.RecordSuccess(id)
			s.pool.Release(id)
			rec.Outcome = recdom.OutcomeForwarded
			rec.AccountID = id
			rec.Attempts = attempts
			s.finish(rec)
			s.log.Info().
				Str("account", id).
				Str("service", rec.Service).
				Int("confidence", rec.Confidence).
				Msg("lead forwarded")
			return
		}

		s.noteFailure(id, classOf(res.Status), res.Wait)
		s.pool.Release(id)
		s.log.Warn().
			Err(res.Err).
			Str("account", id).
			Str("status", string(res.Status)).
			Int("attempt", attempts).
			Msg("send failed")

		// a rate limit or auth failure benches the account itself, so the
		// next attempt fails over to another one immediately; transient
		// errors back off first
		if res.Status == session.SendTransient && attempts < s.cfg.MaxRetries {
			if !sleep(ctx, s.cfg.RetryBackoff) {
				break
			}
		}
	}

	rec.Outcome = recdom.OutcomeFailed
	rec.Attempts = attempts
	s.finish(rec)
	s.log.Error().
		Str("chat", rec.ChatID).
		Str("message", rec.MessageID).
		Int("attempts", attempts).
		Msg("lead failed after retries")
}

// drop records a message that was observed but intentionally not forwarded
func (s *Service) drop(rec recdom.Record, reason recdom.DropReason) {
	rec.Outcome = recdom.OutcomeDropped
	rec.DropReason = reason
	s.finish(rec)
	s.log.Debug().
		Str("chat", rec.ChatID).
		Str("message", rec.MessageID).
		Str("reason", string(reason)).
		Msg("message dropped")
}

// finish writes the terminal record on a detached context so a canceled
// dispatch cannot lose the outcome
func (s *Service) finish(rec recdom.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
	defer cancel()
	if _, err := s.writer.Write(ctx, rec); err != nil {
		s.log.Error().
			Err(err).
			Str("chat", rec.ChatID).
			Str("message", rec.MessageID).
			Msg("record write failed")
	}
}

// failUndrained records a queued message that shutdown could not deliver
func (s *Service) failUndrained(in inbound) {
	m := in.msg
	s.finish(recdom.Record{
		ObservedAt: m.SentAt,
		ObservedBy: in.accountID,
		ChatID:     m.ChatID,
		MessageID:  m.MessageID,
		SenderID:   m.SenderID,
		SenderName: m.Username,
		Text:       m.Text,
		Outcome:    recdom.OutcomeFailed,
	})
}

// classOf maps a send status onto the pool's failure taxonomy
func classOf(st session.SendStatus) accdom.FailureClass {
	switch st {
	case session.SendRateLimited:
		return accdom.FailureRateLimited
	case session.SendAuthFailed:
		return accdom.FailureAuth
	default:
		return accdom.FailureTransient
	}
}
