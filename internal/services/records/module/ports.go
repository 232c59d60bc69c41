package module

import (
	dom "leadrelay/internal/services/records/domain"
)

// Ports exposes the records module surface
type Ports struct {
	// Writer persists terminal records
	Writer dom.WriterPort

	// Dedup fences duplicate observations
	Dedup dom.DedupPort
}
