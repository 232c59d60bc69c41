package module

import dom "leadrelay/internal/services/accounts/domain"

// Ports holds the ports exposed by the accounts module
type Ports struct {
	Pool     dom.PoolPort
	Registry dom.RegistryPort
	Sync     dom.SyncPort
}
