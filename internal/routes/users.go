package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/retenly/retenly/internal/account"
)

// RegisterUserRoutes wires profile and user administration endpoints.
func RegisterUserRoutes(r fiber.Router, h *account.Handler) {
	r.Get("/me", h.Me)
	r.Put("/users/:userId", h.Update)
	r.Delete("/users/:userId", h.Delete)
}
