package module

import reldom "leadrelay/internal/services/relay/domain"

// Ports holds the ports exposed by the relay module
type Ports struct {
	Worker reldom.WorkerPort
}
