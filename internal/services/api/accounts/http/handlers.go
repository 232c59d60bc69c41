// Package http provides http transport for account administration
package http

import (
	stdhttp "net/http"

	"leadrelay/internal/modkit/httpkit"
	"leadrelay/internal/services/api/accounts/domain"
	svc "leadrelay/internal/services/api/accounts/service"
)

// Register mounts the accounts admin endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/", h.list)
	httpkit.PostJSON[domain.AddAccountInput](r, "/", h.add)
	httpkit.Delete(r, "/{id}", h.remove)
	httpkit.PostJSON[domain.StateInput](r, "/{id}/state", h.setState)
}

type handlers struct{ svc svc.Service }

// swagger:route GET /accounts Accounts accountsList
// @Summary List registered accounts with their runtime state
// @Tags Accounts
// @Produce json
// @Success 200 {array} domain.AccountView "ok"
// @Router /accounts [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	return h.svc.List(r.Context())
}

// swagger:route POST /accounts Accounts accountsAdd
// @Summary Register a worker account
// @Tags Accounts
// @Accept json
// @Produce json
// @Param payload body domain.AddAccountInput true "Account"
// @Success 200 {object} domain.AccountView "ok"
// @Router /accounts [post]
func (h *handlers) add(r *stdhttp.Request, in domain.AddAccountInput) (any, error) {
	return h.svc.Add(r.Context(), in)
}

// swagger:route DELETE /accounts/{id} Accounts accountsRemove
// @Summary Remove an account from the registry
// @Tags Accounts
// @Produce json
// @Param id path string true "Account id"
// @Success 204 "removed"
// @Router /accounts/{id} [delete]
func (h *handlers) remove(r *stdhttp.Request) (any, error) {
	if err := h.svc.Remove(r.Context(), httpkit.Param(r, "id")); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// swagger:route POST /accounts/{id}/state Accounts accountsSetState
// @Summary Enable or disable an account
// @Tags Accounts
// @Accept json
// @Produce json
// @Param id path string true "Account id"
// @Param payload body domain.StateInput true "State"
// @Success 200 {object} domain.AccountView "ok"
// @Router /accounts/{id}/state [post]
func (h *handlers) setState(r *stdhttp.Request, in domain.StateInput) (any, error) {
	return h.svc.SetState(r.Context(), httpkit.Param(r, "id"), in)
}
