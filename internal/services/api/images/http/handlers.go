// Package http provides http transport for image generation
package http

import (
	stdhttp "net/http"

	"ablo/internal/modkit/httpkit"
	"ablo/internal/services/api/images/domain"
	svc "ablo/internal/services/api/images/service"
)

// Register mounts the router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.GenerateInput](r, "/generate", h.generate)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /images/generate Images generate
// @Summary Generate an image from a text prompt
// @Tags images
// @Accept json
// @Produce json
// @Param payload body domain.GenerateInput true "Generate"
// @Success 200 {object} domain.GenerateOutput "ok"
// @Failure 400 {object} httpkit.Envelope "validation error"
// @Failure 502 {object} httpkit.Envelope "inference provider error"
// @Router /images/generate [post]
func (h *handlers) generate(r *stdhttp.Request, in domain.GenerateInput) (any, error) {
	return h.svc.Generate(r.Context(), in)
}
