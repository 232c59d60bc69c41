// Package http provides http transport for stats
package http

import (
	stdhttp "net/http"

	"leadrelay/internal/modkit/httpkit"
	svc "leadrelay/internal/services/api/stats/service"
)

// Register mounts stats endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	// one overview response covers accounts, totals and rankings
	httpkit.Get(r, "/", h.overview)
}

type handlers struct{ svc svc.Service }

// swagger:route GET /stats Stats statsOverview
// @Summary Relay overview
// @Description Active account count, outcome totals for all time and the last 24h, top services over 7 days and per account performance
// @Tags Stats
// @Produce json
// @Success 200 {object} domain.Overview "ok"
// @Router /stats [get]
func (h *handlers) overview(r *stdhttp.Request) (any, error) {
	return h.svc.Overview(r.Context())
}
