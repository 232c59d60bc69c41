package module

import (
	dom "leadrelay/internal/services/policy/domain"
)

// Ports exposes the policy module surface
type Ports struct {
	// Snapshot serves the current policy state to the dispatch path
	Snapshot dom.SnapshotPort

	// Admin mutates policy settings and sender flags
	Admin dom.AdminPort

	// Senders records sender sightings
	Senders dom.SenderPort
}
