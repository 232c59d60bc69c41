// Package http provides http transport for policy administration
package http

import (
	stdhttp "net/http"

	"leadrelay/internal/modkit/httpkit"
	"leadrelay/internal/services/api/policy/domain"
	svc "leadrelay/internal/services/api/policy/service"
)

// Register mounts the policy admin endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/", h.current)
	httpkit.PatchJSON[domain.UpdateInput](r, "/", h.update)
	httpkit.PostJSON[domain.FlagInput](r, "/blacklist", h.setBlacklist)
	httpkit.PostJSON[domain.FlagInput](r, "/whitelist", h.setWhitelist)
	httpkit.PostJSON[domain.SendersInput](r, "/senders", h.senders)
}

type handlers struct{ svc svc.Service }

// swagger:route GET /policy Policy policyCurrent
// @Summary Current policy snapshot
// @Tags Policy
// @Produce json
// @Success 200 {object} domain.PolicyView "ok"
// @Router /policy [get]
func (h *handlers) current(r *stdhttp.Request) (any, error) {
	return h.svc.Current(r.Context()), nil
}

// swagger:route PATCH /policy Policy policyUpdate
// @Summary Apply policy settings
// @Tags Policy
// @Accept json
// @Produce json
// @Param payload body domain.UpdateInput true "Settings"
// @Success 200 {object} domain.PolicyView "ok"
// @Failure 422 {object} httpkit.Envelope "invalid setting"
// @Router /policy [patch]
func (h *handlers) update(r *stdhttp.Request, in domain.UpdateInput) (any, error) {
	return h.svc.Update(r.Context(), in)
}

// swagger:route POST /policy/blacklist Policy policyBlacklist
// @Summary Flip the deny flag for a sender
// @Tags Policy
// @Accept json
// @Produce json
// @Param payload body domain.FlagInput true "Flag"
// @Success 200 {object} domain.PolicyView "ok"
// @Router /policy/blacklist [post]
func (h *handlers) setBlacklist(r *stdhttp.Request, in domain.FlagInput) (any, error) {
	return h.svc.SetBlacklist(r.Context(), in)
}

// swagger:route POST /policy/whitelist Policy policyWhitelist
// @Summary Flip the allow flag for a sender
// @Tags Policy
// @Accept json
// @Produce json
// @Param payload body domain.FlagInput true "Flag"
// @Success 200 {object} domain.PolicyView "ok"
// @Router /policy/whitelist [post]
func (h *handlers) setWhitelist(r *stdhttp.Request, in domain.FlagInput) (any, error) {
	return h.svc.SetWhitelist(r.Context(), in)
}

// swagger:route POST /policy/senders Policy policySenders
// @Summary List the sender registry
// @Tags Policy
// @Accept json
// @Produce json
// @Param payload body domain.SendersInput true "Page"
// @Success 200 {array} domain.SenderView "ok"
// @Router /policy/senders [post]
func (h *handlers) senders(r *stdhttp.Request, in domain.SendersInput) (any, error) {
	return h.svc.Senders(r.Context(), in)
}
