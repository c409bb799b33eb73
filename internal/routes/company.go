package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/retenly/retenly/internal/account"
	"github.com/retenly/retenly/internal/company"
)

// RegisterCompanyRoutes wires tenant administration endpoints.
func RegisterCompanyRoutes(r fiber.Router, h *company.Handler, users *account.Handler) {
	r.Get("/companies/:companyNo", h.Get)
	r.Put("/companies/:companyNo", h.Update)
	r.Get("/companies/:companyNo/users", users.ListByCompany)
}
