package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/partner-hub/model"
	"github.com/sahilchouksey/partner-hub/utils/response"
	"github.com/sahilchouksey/partner-hub/utils/validation"
)

// PasswordResetter forwards a validated reset to the partnership API.
type PasswordResetter interface {
	ResetPassword(ctx context.Context, req model.ResetPassword) error
}

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	resetter PasswordResetter
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(resetter PasswordResetter) *AuthHandler {
	return &AuthHandler{resetter: resetter}
}

// ResetPassword validates the reset form locally and forwards it. Validation
// failures never reach the partnership API.
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req model.ResetPassword
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Email = strings.TrimSpace(req.Email)

	if fields := validation.Struct(&req); fields != nil {
		return response.ValidationError(c, fields)
	}

	if err := h.resetter.ResetPassword(c.UserContext(), req); err != nil {
		return response.FromError(c, err)
	}

	return response.SuccessWithMessage(c, "Password has been reset successfully", nil)
}
