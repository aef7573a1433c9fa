// Package http provides http transport for IP assets
package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	"ablo/internal/modkit/httpkit"
	"ablo/internal/services/api/assets/domain"
	svc "ablo/internal/services/api/assets/service"
)

// Register mounts the router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.PrepareInput](r, "/prepare", h.prepare)
	httpkit.PostJSON[domain.RegisterInput](r, "/register", h.register)
	httpkit.PostJSON[domain.VerifyInput](r, "/verify", h.verify)
	httpkit.Get(r, "/registrations/{id}", h.registration)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /assets/prepare Assets prepare
// @Summary Store an image and its IP metadata without minting
// @Tags assets
// @Accept json
// @Produce json
// @Param payload body domain.PrepareInput true "Prepare"
// @Success 200 {object} domain.PrepareOutput "ok"
// @Failure 400 {object} httpkit.Envelope "validation error"
// @Failure 503 {object} httpkit.Envelope "storage unavailable"
// @Router /assets/prepare [post]
func (h *handlers) prepare(r *stdhttp.Request, in domain.PrepareInput) (any, error) {
	return h.svc.Prepare(r.Context(), in)
}

// swagger:route POST /assets/register Assets register
// @Summary Store an image and register it as an IP asset
// @Tags assets
// @Accept json
// @Produce json
// @Param payload body domain.RegisterInput true "Register"
// @Success 200 {object} domain.RegistrationView "ok"
// @Failure 400 {object} httpkit.Envelope "validation error"
// @Failure 502 {object} httpkit.Envelope "chain error"
// @Router /assets/register [post]
func (h *handlers) register(r *stdhttp.Request, in domain.RegisterInput) (any, error) {
	return h.svc.Register(r.Context(), in)
}

// swagger:route POST /assets/verify Assets verify
// @Summary Poll a registration for on-chain confirmation
// @Tags assets
// @Accept json
// @Produce json
// @Param payload body domain.VerifyInput true "Verify"
// @Success 200 {object} domain.VerifyOutput "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /assets/verify [post]
func (h *handlers) verify(r *stdhttp.Request, in domain.VerifyInput) (any, error) {
	return h.svc.Verify(r.Context(), in)
}

// swagger:route GET /assets/registrations/{id} Assets registration
// @Summary Current snapshot of a registration
// @Tags assets
// @Produce json
// @Param id path string true "Registration id"
// @Success 200 {object} domain.RegistrationView "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /assets/registrations/{id} [get]
func (h *handlers) registration(r *stdhttp.Request) (any, error) {
	return h.svc.Registration(chi.URLParam(r, "id"))
}
