package store

import (
	"context"
	"time"

	perr "leadrelay/internal/platform/errors"
)

// retryBackoff spaces transaction retries, attempt i sleeps (i+1) * 25ms
const retryBackoff = 25 * time.Millisecond

// RunTx executes fn inside a transaction, retrying transient failures
// such as serialization conflicts up to attempts times
func RunTx(ctx context.Context, tx TxRunner, attempts int, fn func(ctx context.Context, q RowQuerier) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var last error
	for i := 0; i < attempts; i++ {
		last = tx.Tx(ctx, func(q RowQuerier) error {
			return fn(ctx, q)
		})
		if last == nil || !perr.IsRetryable(last) {
			return last
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(i+1) * retryBackoff):
		}
	}
	return last
}
