package module

import (
	"time"

	"leadrelay/internal/platform/config"
)

// Options controls the relay worker
type Options struct {
	MaxRetries     int
	Workers        int
	QueueDepth     int
	RetryBackoff   time.Duration
	RedialWait     time.Duration
	SyncEvery      time.Duration
	FlushEvery     time.Duration
	ReconcileEvery time.Duration
	DrainTimeout   time.Duration
	WriteTimeout   time.Duration
	TaxonomyPath   string
}

// FromConfig reads with RELAY_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("RELAY_")
	return Options{
		MaxRetries:     c.MayInt("MAX_RETRIES", 3),
		Workers:        c.MayInt("WORKERS", 4),
		QueueDepth:     c.MayInt("QUEUE_DEPTH", 256),
		RetryBackoff:   c.MayDuration("RETRY_BACKOFF", 2*time.Second),
		RedialWait:     c.MayDuration("REDIAL_WAIT", 5*time.Second),
		SyncEvery:      c.MayDuration("SYNC_EVERY", 15*time.Second),
		FlushEvery:     c.MayDuration("FLUSH_EVERY", 30*time.Second),
		ReconcileEvery: c.MayDuration("RECONCILE_EVERY", 5*time.Second),
		DrainTimeout:   c.MayDuration("DRAIN_TIMEOUT", 10*time.Second),
		WriteTimeout:   c.MayDuration("WRITE_TIMEOUT", 5*time.Second),
		TaxonomyPath:   c.MayString("TAXONOMY_PATH", ""),
	}
}
