package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/retenly/retenly/internal/requirelist"
)

// RegisterRequireListRoutes wires the analysis request workflow. Creation is
// guarded by the idempotency middleware when Redis is available.
func RegisterRequireListRoutes(r fiber.Router, h *requirelist.Handler, idempotency fiber.Handler) {
	if idempotency != nil {
		r.Post("/require-lists", idempotency, h.Create)
	} else {
		r.Post("/require-lists", h.Create)
	}
	r.Get("/require-lists/:requireListNo", h.Get)
	r.Get("/info-columns/ext", h.InfoColumns)
}
