package module

import (
	"leadrelay/internal/platform/config"
	"leadrelay/internal/services/accounts/domain"
)

// Options controls the account pool
type Options struct {
	HourlyLimit         int
	FloodWaitMultiplier float64
	ErrorCeiling        int

	// Limits supplies the live policy values per decision, nil falls back
	// to the static knobs above
	Limits func() domain.Limits
}

// FromConfig reads with POOL_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("POOL_")
	return Options{
		HourlyLimit:         c.MayInt("HOURLY_LIMIT", 100),
		FloodWaitMultiplier: c.MayFloat64("FLOOD_MULTIPLIER", 1.5),
		ErrorCeiling:        c.MayInt("ERROR_CEILING", 5),
	}
}
