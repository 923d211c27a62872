package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/uchat-app/uchat/internal/handler/middleware"
	"github.com/uchat-app/uchat/internal/service"
	"github.com/uchat-app/uchat/pkg/validator"
)

type AuthHandler struct {
	authService *service.AuthService
	validator   *validator.Validator
}

func NewAuthHandler(authService *service.AuthService, validator *validator.Validator) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator,
	}
}

// Register handles account creation
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	resp, err := h.authService.Register(c.Context(), req, clientFingerprint(c))
	if err != nil {
		if errors.Is(err, service.ErrHandleTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create user",
		})
	}

	setSessionCookies(c, resp)

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login handles user login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	resp, err := h.authService.Login(c.Context(), req, clientFingerprint(c))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// One generic answer regardless of which check failed.
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid credentials",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to log in",
		})
	}

	setSessionCookies(c, resp)

	return c.Status(fiber.StatusOK).JSON(resp)
}

// Logout ends the current session and clears the cookie pair
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sessionID, ok := c.Locals("session_id").(uuid.UUID)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	if err := h.authService.Logout(c.Context(), sessionID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to log out",
		})
	}

	c.ClearCookie(middleware.SessionIDCookie, middleware.SessionSignatureCookie)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// setSessionCookies writes the SESSION_ID / SESSION_SIGNATURE pair. Both
// cookies carry the session's own expiry so the browser drops them in step
// with the server-side row.
func setSessionCookies(c *fiber.Ctx, resp *service.AuthResponse) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionIDCookie,
		Value:    resp.SessionID.String(),
		Expires:  resp.SessionExpires,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionSignatureCookie,
		Value:    resp.SessionSignature,
		Expires:  resp.SessionExpires,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// clientFingerprint extracts the opaque client characteristic used to scope
// one session per distinct client. Absent header means empty fingerprint.
func clientFingerprint(c *fiber.Ctx) string {
	return c.Get("X-Fingerprint")
}
