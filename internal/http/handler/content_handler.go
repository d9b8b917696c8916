package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/BioLink/internal/app/model"
	"github.com/sifan077/BioLink/internal/app/service"
	"go.uber.org/zap"
)

// ContentDeps groups dependencies required by content handlers.
type ContentDeps struct {
	Logger  *zap.Logger
	Content service.ContentService
}

// ContentHandler serves and replaces the profile/links/videos document.
type ContentHandler struct {
	logger  *zap.Logger
	content service.ContentService
}

// NewContentHandler creates a content handler with the provided dependencies.
func NewContentHandler(deps ContentDeps) *ContentHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentHandler{
		logger:  logger,
		content: deps.Content,
	}
}

// Register wires content routes onto the provided router.
func (h *ContentHandler) Register(router fiber.Router, guards Guards) {
	router.Get("/api/links", h.Get)
	router.Put("/api/links", chain(guards.Admin, h.Replace)...)
}

// Get handles GET /api/links
func (h *ContentHandler) Get(c *fiber.Ctx) error {
	content, err := h.content.Get(c.UserContext())
	if err != nil {
		h.logger.Error("failed to load content", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load data",
		})
	}
	return c.JSON(content.Public())
}

// Replace handles PUT /api/links
func (h *ContentHandler) Replace(c *fiber.Ctx) error {
	var req model.Content
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if _, err := h.content.Replace(c.UserContext(), &req); err != nil {
		if errors.Is(err, service.ErrInvalidContent) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		h.logger.Error("failed to save content", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save data",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}
