package module

import (
	"leadrelay/internal/platform/config"
)

// Options controls the taxonomy pack source for the API process
type Options struct {
	// Path points at a services.json override; empty means the embedded pack
	Path string
}

// FromConfig reads TAXONOMY_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	tc := cfg.Prefix("TAXONOMY_")
	return Options{
		Path: tc.MayString("PATH", ""),
	}
}
