package signup

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the signup flow endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a signup HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type emailRequest struct {
	Email string `json:"email"`
}

type otpSendRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type otpVerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// CheckEmail answers the uniqueness pre-check and marks the session when free.
func (h *Handler) CheckEmail(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Email == "" {
		return fiber.NewError(http.StatusBadRequest, "email is required")
	}
	available, err := h.service.CheckEmail(c.UserContext(), req.Email)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"email": req.Email, "available": available})
}

// SendOtp dispatches a one-time code to the address.
func (h *Handler) SendOtp(c *fiber.Ctx) error {
	var req otpSendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.SendOtp(c.UserContext(), req.Email, req.Password); err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "sent"})
}

// VerifyOtp checks the submitted code.
func (h *Handler) VerifyOtp(c *fiber.Ctx) error {
	var req otpVerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.VerifyOtp(c.UserContext(), req.Email, req.Code); err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "verified"})
}

// Complete finalizes the signup and creates the account.
func (h *Handler) Complete(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.service.CompleteSignup(c.UserContext(), req.Email, req.Password, req.Name)
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"user_id":    user.ID,
		"email":      user.Email,
		"name":       user.Name,
		"role":       user.RoleName,
		"company_no": user.CompanyNo,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrAlreadyRegistered), errors.Is(err, ErrOtpAlreadySent):
		return http.StatusConflict
	case errors.Is(err, ErrEmailNotChecked),
		errors.Is(err, ErrOtpExpired),
		errors.Is(err, ErrOtpMismatch),
		errors.Is(err, ErrNotVerified),
		errors.Is(err, ErrPasswordMismatch),
		errors.Is(err, ErrWeakPassword):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
