package module

import (
	"leadrelay/internal/core/classify"
	taxdom "leadrelay/internal/services/api/taxonomy/domain"
)

// Ports exposes the taxonomy module surface.
// Engine is shared with the classify module so a reload here changes what
// /classify scores with
type Ports struct {
	Service taxdom.ServicePort
	Engine  *classify.Engine
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
