package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/BioLink/internal/app/service"
	httpUtil "github.com/sifan077/BioLink/internal/http/util"
	"go.uber.org/zap"
)

// AdminDeps groups dependencies required by admin handlers.
type AdminDeps struct {
	Logger *zap.Logger
	Gate   service.PasswordGate
	Tokens *httpUtil.TokenSigner
}

// AdminHandler implements login and password management.
type AdminHandler struct {
	logger *zap.Logger
	gate   service.PasswordGate
	tokens *httpUtil.TokenSigner
}

// NewAdminHandler creates an admin handler with the provided dependencies.
func NewAdminHandler(deps AdminDeps) *AdminHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{
		logger: logger,
		gate:   deps.Gate,
		tokens: deps.Tokens,
	}
}

// Register wires admin routes onto the provided router.
func (h *AdminHandler) Register(router fiber.Router, guards Guards) {
	admin := router.Group("/api/admin")
	{
		admin.Post("/login", chain(guards.RateLimit, h.Login)...)
		admin.Get("/password", h.HasPassword)
		admin.Put("/password", chain(guards.Admin, h.ChangePassword)...)
	}
}

// LoginRequest represents the request body for an admin login.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

// ChangePasswordRequest represents the request body for a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Login handles POST /api/admin/login
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	ok, err := h.gate.Check(c.UserContext(), req.Password)
	if err != nil {
		h.logger.Error("failed to check admin password", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to check password",
		})
	}
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": service.ErrWrongPassword.Error(),
		})
	}

	token, err := h.tokens.Issue(httpUtil.AdminSubject)
	if err != nil {
		if errors.Is(err, httpUtil.ErrMissingSecret) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		h.logger.Error("failed to issue admin session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to issue session",
		})
	}

	h.logger.Info("admin session issued")
	return c.JSON(LoginResponse{
		Token:     token,
		ExpiresIn: int64(h.tokens.TTL().Seconds()),
	})
}

// HasPassword handles GET /api/admin/password
func (h *AdminHandler) HasPassword(c *fiber.Ctx) error {
	has, err := h.gate.HasPassword(c.UserContext())
	if err != nil {
		h.logger.Error("failed to read admin password", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to read password",
		})
	}
	return c.JSON(fiber.Map{
		"hasPassword": has,
	})
}

// ChangePassword handles PUT /api/admin/password
func (h *AdminHandler) ChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	err := h.gate.Change(c.UserContext(), req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
		h.logger.Info("admin password changed")
		return c.JSON(fiber.Map{
			"success": true,
		})
	case errors.Is(err, service.ErrWeakPassword):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, service.ErrWrongPassword):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		h.logger.Error("failed to change admin password", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to change password",
		})
	}
}
