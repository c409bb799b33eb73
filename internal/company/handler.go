package company

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes company admin endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a company HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type updateRequest struct {
	CompanyName string `json:"company_name"`
}

// Get returns a single company.
func (h *Handler) Get(c *fiber.Ctx) error {
	no, err := strconv.ParseInt(c.Params("companyNo"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid company number")
	}
	company, err := h.service.Get(c.UserContext(), no)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"company_no": company.No,
		"name":       company.Name,
		"created_at": company.CreatedAt,
	})
}

// Update renames a company.
func (h *Handler) Update(c *fiber.Ctx) error {
	no, err := strconv.ParseInt(c.Params("companyNo"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid company number")
	}
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	company, err := h.service.Rename(c.UserContext(), no, req.CompanyName)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrInvalidName):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"company_no": company.No,
		"name":       company.Name,
	})
}
