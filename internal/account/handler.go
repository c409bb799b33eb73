package account

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes account profile and administration endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an account HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type userResponse struct {
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	CompanyNo      int64  `json:"company_no"`
	DepartmentName string `json:"department_name,omitempty"`
	CreatedAt      string `json:"created_at"`
	LastLoginAt    string `json:"last_login_at"`
}

func toResponse(user User) userResponse {
	return userResponse{
		UserID:         user.ID,
		Email:          user.Email,
		Name:           user.Name,
		Role:           user.RoleName,
		CompanyNo:      user.CompanyNo,
		DepartmentName: user.DepartmentName,
		CreatedAt:      user.CreatedAt.Format(time.RFC3339),
		LastLoginAt:    user.LastLoginAt.Format(time.RFC3339),
	}
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	user, err := h.service.Get(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "user not found")
	}
	return c.Status(http.StatusOK).JSON(toResponse(user))
}

type updateRequest struct {
	Name           string `json:"name"`
	DepartmentName string `json:"department_name"`
}

// Update stores profile changes for a user.
func (h *Handler) Update(c *fiber.Ctx) error {
	userID := c.Params("userId")
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.service.UpdateProfile(c.UserContext(), UpdateInput{
		UserID:         userID,
		Name:           req.Name,
		DepartmentName: req.DepartmentName,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrInvalidName), errors.Is(err, ErrInvalidDepartment):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusOK).JSON(toResponse(user))
}

// Delete soft-deletes a user.
func (h *Handler) Delete(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if err := h.service.Deactivate(c.UserContext(), userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "deleted"})
}

// ListByCompany returns all active members of a company.
func (h *Handler) ListByCompany(c *fiber.Ctx) error {
	companyNo, err := strconv.ParseInt(c.Params("companyNo"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid company number")
	}
	users, err := h.service.ListByCompany(c.UserContext(), companyNo)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	responses := make([]userResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, toResponse(user))
	}
	return c.Status(http.StatusOK).JSON(responses)
}
