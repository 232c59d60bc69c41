package botapi

import (
	"context"
	json "encoding/json/v2"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"leadrelay/internal/adapters/session"
	perr "leadrelay/internal/platform/errors"
)

const (
	msgChanBuf   = 64
	eventChanBuf = 8

	// disconnectAfter consecutive poll failures surface one Disconnected
	// event while the loop keeps retrying
	disconnectAfter = 5

	pollRetryBase = 500 * time.Millisecond
)

// rateLimitedError carries the provider wait through the poll loop
type rateLimitedError struct {
	wait time.Duration
}

func (e *rateLimitedError) Error() string {
	return fmt.Sprintf("botapi rate limited for %s", e.wait)
}

// Subscribe opens the account's long-poll stream. Both channels close when
// ctx is canceled or the account fails authentication
func (c *Client) Subscribe(ctx context.Context, accountID string) (<-chan session.IncomingMessage, <-chan session.Event, error) {
	tok, ok := c.opts.Tokens(accountID)
	if !ok {
		return nil, nil, perr.Unauthorizedf("botapi: no credentials for account %s", accountID)
	}
	msgs := make(chan session.IncomingMessage, msgChanBuf)
	events := make(chan session.Event, eventChanBuf)
	go c.pollLoop(ctx, accountID, tok, msgs, events)
	return msgs, events, nil
}

func (c *Client) pollLoop(ctx context.Context, accountID, tok string, msgs chan<- session.IncomingMessage, events chan<- session.Event) {
	defer close(msgs)
	defer close(events)

	emit := func(ev session.Event) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	// verify credentials before reporting the stream live
	if err := c.probe(ctx, tok); err != nil {
		if perr.IsCode(err, perr.ErrorCodeUnauthorized) {
			c.log.Warn().Err(err).Str("account", accountID).Msg("botapi auth rejected on connect")
			emit(session.Event{Kind: session.EventAuthFailed})
			return
		}
		// transient probe failure; the loop below has its own retry
		c.log.Warn().Err(err).Str("account", accountID).Msg("botapi probe failed, polling anyway")
	}
	if !emit(session.Event{Kind: session.EventConnected}) {
		return
	}

	var offset int64
	failures := 0
	down := false
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		batch, err := c.getUpdates(ctx, tok, offset)
		switch {
		case err == nil:
			if down {
				down = false
				if !emit(session.Event{Kind: session.EventConnected}) {
					return
				}
			}
			failures = 0
			for _, u := range batch {
				if u.UpdateID >= offset {
					offset = u.UpdateID + 1
				}
				im, ok := toIncoming(u)
				if !ok {
					continue
				}
				select {
				case msgs <- im:
				case <-ctx.Done():
					return
				}
			}

		case ctx.Err() != nil:
			return

		case isRateLimited(err):
			var rle *rateLimitedError
			errors.As(err, &rle)
			c.log.Warn().Dur("wait", rle.wait).Str("account", accountID).Msg("botapi poll rate limited")
			if !emit(session.Event{Kind: session.EventRateLimited, Wait: rle.wait}) {
				return
			}
			c.sleep(rle.wait)

		case perr.IsCode(err, perr.ErrorCodeUnauthorized):
			c.log.Warn().Err(err).Str("account", accountID).Msg("botapi auth rejected")
			emit(session.Event{Kind: session.EventAuthFailed})
			return

		default:
			failures++
			back := backoff(pollRetryBase, failures)
			c.log.Warn().
				Err(err).
				Int("failures", failures).
				Dur("retry_in", back).
				Str("account", accountID).
				Msg("botapi poll error retrying")
			if failures >= disconnectAfter && !down {
				down = true
				if !emit(session.Event{Kind: session.EventDisconnected}) {
					return
				}
			}
			c.sleep(back)
		}
	}
}

func (c *Client) getUpdates(ctx context.Context, tok string, offset int64) ([]update, error) {
	q := url.Values{}
	q.Set("timeout", strconv.Itoa(int(c.opts.PollWait/time.Second)))
	q.Set("limit", strconv.Itoa(c.opts.PollLimit))
	if offset > 0 {
		q.Set("offset", strconv.FormatInt(offset, 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.methodURL(tok, "getUpdates")+"?"+q.Encode(), nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "botapi new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.poll.Do(req)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "botapi poll failed")
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	_ = resp.Body.Close()
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "botapi read failed")
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, perr.Unauthorizedf("botapi auth rejected: %s", tail(raw))
	case http.StatusTooManyRequests:
		return nil, &rateLimitedError{wait: retryAfterOf(parseEnvelope(raw), resp.Header)}
	default:
		return nil, perr.Newf(perr.ErrorCodeUnavailable, "botapi unexpected status %d: %s", resp.StatusCode, tail(raw))
	}

	var env updatesEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "botapi decode updates failed")
	}
	if !env.OK {
		switch env.ErrorCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, perr.Unauthorizedf("botapi auth rejected: %s", env.Description)
		case http.StatusTooManyRequests:
			wait := defaultFloodWait
			if env.Parameters != nil && env.Parameters.RetryAfter > 0 {
				wait = time.Duration(env.Parameters.RetryAfter) * time.Second
			}
			return nil, &rateLimitedError{wait: wait}
		default:
			return nil, perr.Newf(perr.ErrorCodeUnavailable, "botapi error %d: %s", env.ErrorCode, env.Description)
		}
	}
	return env.Result, nil
}

// probe verifies the token with a getMe round trip
func (c *Client) probe(ctx context.Context, tok string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.methodURL(tok, "getMe"), nil)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "botapi new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "botapi probe failed")
	}
	defer func() { _ = drainAndClose(resp.Body) }()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return perr.Unauthorizedf("botapi probe auth rejected")
	default:
		return perr.Newf(perr.ErrorCodeUnavailable, "botapi probe status %d", resp.StatusCode)
	}
}

func isRateLimited(err error) bool {
	var rle *rateLimitedError
	return errors.As(err, &rle)
}

// toIncoming converts one update to the port message shape.
// Updates without a sender or a text body are skipped
func toIncoming(u update) (session.IncomingMessage, bool) {
	m := u.Message
	if m == nil || m.From == nil || strings.TrimSpace(m.Text) == "" {
		return session.IncomingMessage{}, false
	}
	return session.IncomingMessage{
		MessageID: strconv.FormatInt(m.MessageID, 10),
		ChatID:    strconv.FormatInt(m.Chat.ID, 10),
		SenderID:  strconv.FormatInt(m.From.ID, 10),
		Username:  m.From.Username,
		Text:      m.Text,
		SentAt:    time.Unix(m.Date, 0).UTC(),
	}, true
}
