// Package http mounts the taxonomy API routes
package http

import (
	"net/http"

	"leadrelay/internal/modkit/httpkit"

	tsvc "leadrelay/internal/services/api/taxonomy/service"
)

// Register mounts taxonomy routes on the given router
func Register(r httpkit.Router, svc tsvc.Service) {
	h := &handlers{svc: svc}

	// swagger:route GET /taxonomy Taxonomy taxonomyDescribe
	// Describe the taxonomy pack behind the classifier
	httpkit.Get(r, "/", h.describe)

	// swagger:route POST /taxonomy/reload Taxonomy taxonomyReload
	// Reload the pack from its source and notify relay workers
	httpkit.Post(r, "/reload", h.reload)
}

type handlers struct {
	svc tsvc.Service
}

// describe returns the currently loaded taxonomy pack
// @Summary      Describe taxonomy
// @Description  Returns version, scale and per-service pattern counts for the pack currently classifying messages
// @Tags         Taxonomy
// @Produce      json
// @Success      200 {object} domain.PackView
// @Router       /taxonomy [get]
func (h *handlers) describe(r *http.Request) (any, error) {
	return h.svc.Describe(r.Context()), nil
}

// reload re-reads the pack and bumps the shared taxonomy sequence
// @Summary      Reload taxonomy
// @Description  Parses the pack from its configured source, bumps the taxonomy sequence and swaps the in-process classifier. A parse failure keeps the current pack
// @Tags         Taxonomy
// @Produce      json
// @Success      200 {object} domain.ReloadOutput
// @Failure      422 {object} httpkit.Envelope "pack did not parse"
// @Router       /taxonomy/reload [post]
func (h *handlers) reload(r *http.Request) (any, error) {
	return h.svc.Reload(r.Context())
}
