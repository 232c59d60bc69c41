package module

import (
	"leadrelay/internal/platform/config"
)

// Options controls the policy defaults used before any settings rows exist
type Options struct {
	ConfidenceThreshold int
	HourlyLimit         int
	FloodWaitMultiplier float64
	BlacklistEnabled    bool
	WhitelistEnabled    bool
	MinLength           int
	MaxLength           int
	TargetChannel       string
}

// FromConfig reads with POLICY_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("POLICY_")
	return Options{
		ConfidenceThreshold: c.MayInt("CONFIDENCE_THRESHOLD", 70),
		HourlyLimit:         c.MayInt("HOURLY_LIMIT", 100),
		FloodWaitMultiplier: c.MayFloat64("FLOOD_MULTIPLIER", 1.5),
		BlacklistEnabled:    c.MayBool("BLACKLIST_ENABLED", true),
		WhitelistEnabled:    c.MayBool("WHITELIST_ENABLED", false),
		MinLength:           c.MayInt("MIN_LENGTH", 10),
		MaxLength:           c.MayInt("MAX_LENGTH", 10000),
		TargetChannel:       c.MayString("TARGET_CHANNEL", ""),
	}
}
