package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/retenly/retenly/internal/auth"
	"github.com/retenly/retenly/internal/signup"
)

// RegisterAuthRoutes wires the signup flow and session endpoints.
func RegisterAuthRoutes(r fiber.Router, signupHandler *signup.Handler, authHandler *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")

	group.Post("/email/check", signupHandler.CheckEmail)
	group.Post("/otp/send", signupHandler.SendOtp)
	group.Post("/otp/verify", signupHandler.VerifyOtp)
	group.Post("/signup", signupHandler.Complete)

	if rateLimiter != nil {
		group.Post("/login", rateLimiter, authHandler.Login)
	} else {
		group.Post("/login", authHandler.Login)
	}
	group.Post("/refresh", authHandler.Refresh)
}
