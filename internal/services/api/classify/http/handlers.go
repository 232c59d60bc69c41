// Package http mounts the classify API routes
package http

import (
	"net/http"

	"leadrelay/internal/modkit/httpkit"

	"leadrelay/internal/services/api/classify/domain"
	csvc "leadrelay/internal/services/api/classify/service"
)

// Register mounts classify routes on the given router
func Register(r httpkit.Router, svc csvc.Service) {
	h := &handlers{svc: svc}

	// swagger:route POST /classify Classify classifyText
	// Score one text against the live taxonomy
	httpkit.PostJSON[domain.ClassifyInput](r, "/", h.classify)
}

type handlers struct {
	svc csvc.Service
}

// classify scores a text without forwarding anything
// @Summary      Classify text
// @Description  Runs the relay classifier over one text and returns the scored services, urgency and language hint. Useful for tuning the taxonomy
// @Tags         Classify
// @Accept       json
// @Produce      json
// @Param        payload body domain.ClassifyInput true "text to score"
// @Success      200 {object} domain.ClassifyView
// @Failure      422 {object} httpkit.Envelope "malformed payload"
// @Router       /classify [post]
func (h *handlers) classify(r *http.Request, in domain.ClassifyInput) (any, error) {
	return h.svc.Classify(r.Context(), in), nil
}
