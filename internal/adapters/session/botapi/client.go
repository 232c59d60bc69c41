// Package botapi implements session.Session over an HTTP bot gateway
package botapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"leadrelay/internal/adapters/session"
	perr "leadrelay/internal/platform/errors"
	"leadrelay/internal/platform/logger"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUA        = "leadrelay-relay"
	defaultPollWait  = 25 * time.Second
	defaultPollLimit = 100

	// defaultFloodWait is assumed when the provider rate limits without
	// naming a wait; the pool multiplies it like any provider wait
	defaultFloodWait = 60 * time.Second
)

// TokenFunc resolves an account id to its bot token.
// The second return is false when the account has no bound credentials
type TokenFunc func(accountID string) (string, bool)

// Options configures the Client
type Options struct {
	// BaseURL of the gateway, e.g. https://api.telegram.org
	BaseURL   string
	UserAgent string

	// Timeout bounds one send or probe request
	Timeout time.Duration

	// PollWait is the server-side long poll hold; PollLimit caps updates per poll
	PollWait  time.Duration
	PollLimit int

	// Tokens resolves accounts to credentials; required
	Tokens TokenFunc
}

// Client talks to the bot gateway. Send never retries; the dispatcher owns
// retry policy so rate limits surface as typed results instead of sleeps
type Client struct {
	http  *http.Client
	poll  *http.Client
	opts  Options
	log   logger.Logger
	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a Client with sane defaults
func New(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.PollWait <= 0 {
		o.PollWait = defaultPollWait
	}
	if o.PollLimit <= 0 {
		o.PollLimit = defaultPollLimit
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		// long polls hold the connection for PollWait before the server responds
		poll:  &http.Client{Timeout: o.PollWait + o.Timeout},
		opts:  o,
		log:   *logger.Named("botapi"),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Send delivers content to a channel through the named account.
// The result is a typed outcome; callers decide whether to retry elsewhere
func (c *Client) Send(ctx context.Context, accountID, channel, content string) session.SendResult {
	tok, ok := c.opts.Tokens(accountID)
	if !ok {
		return session.SendResult{
			Status: session.SendAuthFailed,
			Err:    perr.Unauthorizedf("botapi: no credentials for account %s", accountID),
		}
	}

	body, err := marshalSendMessage(channel, content)
	if err != nil {
		return session.SendResult{
			Status: session.SendTransient,
			Err:    perr.Wrapf(err, perr.ErrorCodeUnknown, "botapi encode send failed"),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(tok, "sendMessage"), bytes.NewReader(body))
	if err != nil {
		return session.SendResult{
			Status: session.SendTransient,
			Err:    perr.Wrapf(err, perr.ErrorCodeUnknown, "botapi new request failed"),
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.opts.UserAgent)

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)
	if err != nil {
		// timeouts and transport failures are transient per the retry contract
		return session.SendResult{
			Status: session.SendTransient,
			Err:    perr.Wrapf(err, perr.ErrorCodeUnavailable, "botapi send failed"),
		}
	}

	res := c.mapSendResponse(resp)
	c.log.Debug().
		Str("account", accountID).
		Str("channel", channel).
		Int("status", resp.StatusCode).
		Str("outcome", string(res.Status)).
		Dur("latency", lat).
		Msg("botapi send response")
	return res
}

// mapSendResponse converts one HTTP response into a typed send outcome.
// Always consumes and closes the body
func (c *Client) mapSendResponse(resp *http.Response) session.SendResult {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()

	env := parseEnvelope(raw)

	switch {
	case resp.StatusCode == http.StatusOK && env.OK:
		return session.SendResult{Status: session.SendOK}

	case resp.StatusCode == http.StatusTooManyRequests || env.ErrorCode == http.StatusTooManyRequests:
		wait := retryAfterOf(env, resp.Header)
		return session.SendResult{
			Status: session.SendRateLimited,
			Wait:   wait,
			Err:    perr.Newf(perr.ErrorCodeTooManyRequests, "botapi rate limited: %s", env.Description),
		}

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden ||
		env.ErrorCode == http.StatusUnauthorized || env.ErrorCode == http.StatusForbidden:
		return session.SendResult{
			Status: session.SendAuthFailed,
			Err:    perr.Unauthorizedf("botapi auth rejected: %s", env.Description),
		}

	default:
		return session.SendResult{
			Status: session.SendTransient,
			Err:    perr.Newf(perr.ErrorCodeUnavailable, "botapi unexpected status %d: %s", resp.StatusCode, tail(raw)),
		}
	}
}

func (c *Client) methodURL(token, method string) string {
	return c.opts.BaseURL + "/bot" + token + "/" + method
}
