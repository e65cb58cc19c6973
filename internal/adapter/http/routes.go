package http

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/", h.Root)

	// Plan generation: buffered or streaming depending on Accept/?stream=1.
	r.Post("/plan", h.CreatePlan)

	// Legacy streaming endpoint, titles-only prompt.
	r.Post("/plan/stream", h.StreamPlanLegacy)

	// Background generation with polled status.
	r.Post("/plan/start", h.StartPlan)
	r.Get("/plan/status/{planId}", h.PlanStatus)
}
