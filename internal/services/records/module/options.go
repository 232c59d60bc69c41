package module

import (
	"time"

	"leadrelay/internal/platform/config"
)

// Options controls the records service
type Options struct {
	DedupTTL time.Duration
}

// FromConfig reads with RECORDS_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("RECORDS_")
	return Options{
		DedupTTL: c.MayDuration("DEDUP_TTL", 48*time.Hour),
	}
}
