package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/BioLink/internal/app/service"
	"github.com/sifan077/BioLink/internal/http/view"
	"go.uber.org/zap"
)

// PageDeps groups dependencies required by page handlers.
type PageDeps struct {
	Logger  *zap.Logger
	Content service.ContentService
}

// PageHandler renders the public profile page and the heartbeat.
type PageHandler struct {
	logger  *zap.Logger
	content service.ContentService
}

// NewPageHandler creates a page handler with the provided dependencies.
func NewPageHandler(deps PageDeps) *PageHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageHandler{
		logger:  logger,
		content: deps.Content,
	}
}

// Register wires page routes onto the provided router.
func (h *PageHandler) Register(router fiber.Router) {
	router.Get("/", h.Profile)
	router.Get("/health", h.Health)
}

// Health is a simple endpoint so we know the service is running.
func (h *PageHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "BioLink",
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Profile handles GET / and renders the public page.
func (h *PageHandler) Profile(c *fiber.Ctx) error {
	content, err := h.content.Get(c.UserContext())
	if err != nil {
		h.logger.Error("failed to load content for page", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load page",
		})
	}

	html, err := view.RenderProfilePage(view.ProfilePageData{
		Profile: content.Profile,
		Links:   content.ActiveLinks(),
		Videos:  content.Videos,
	})
	if err != nil {
		h.logger.Error("failed to render profile page", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render page",
		})
	}

	return c.
		Type("html", "utf-8").
		SendString(html)
}
