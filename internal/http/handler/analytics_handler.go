package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/BioLink/internal/app/model"
	"github.com/sifan077/BioLink/internal/app/service"
	httpUtil "github.com/sifan077/BioLink/internal/http/util"
	"go.uber.org/zap"
)

// AnalyticsDeps groups dependencies required by analytics handlers.
type AnalyticsDeps struct {
	Logger    *zap.Logger
	Analytics service.AnalyticsService
}

// AnalyticsHandler exposes ingestion, dashboard rollups and resets.
type AnalyticsHandler struct {
	logger    *zap.Logger
	analytics service.AnalyticsService
}

// NewAnalyticsHandler creates an analytics handler with the provided dependencies.
func NewAnalyticsHandler(deps AnalyticsDeps) *AnalyticsHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsHandler{
		logger:    logger,
		analytics: deps.Analytics,
	}
}

// Register wires analytics routes onto the provided router.
func (h *AnalyticsHandler) Register(router fiber.Router, guards Guards) {
	analytics := router.Group("/api/analytics")
	{
		analytics.Post("/track", chain(guards.RateLimit, h.TrackView)...)
		analytics.Get("/track", chain(guards.Admin, h.ViewSummary)...)
		analytics.Delete("/track", chain(guards.Admin, h.ResetViews)...)

		analytics.Post("/link-click", chain(guards.RateLimit, h.TrackClick)...)
		analytics.Get("/link-click", chain(guards.Admin, h.LinkClickSummary)...)
		analytics.Delete("/link-click", chain(guards.Admin, h.ResetClicks)...)
	}
}

// TrackResponse is the admission outcome with the success flag the page script expects.
type TrackResponse struct {
	Success bool `json:"success"`
	*model.TrackResult
}

// TrackClickRequest represents the request body for a link click.
type TrackClickRequest struct {
	LinkID   int64  `json:"linkId"`
	LinkName string `json:"linkName"`
}

// TrackView handles POST /api/analytics/track
func (h *AnalyticsHandler) TrackView(c *fiber.Ctx) error {
	result := h.analytics.TrackView(c.UserContext(), service.TrackViewInput{
		SourceAddress: sourceAddress(c),
		UserAgent:     c.Get(fiber.HeaderUserAgent),
	})
	return c.JSON(TrackResponse{Success: true, TrackResult: result})
}

// TrackClick handles POST /api/analytics/link-click
func (h *AnalyticsHandler) TrackClick(c *fiber.Ctx) error {
	var req TrackClickRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	result, err := h.analytics.TrackClick(c.UserContext(), service.TrackClickInput{
		LinkID:        req.LinkID,
		LinkName:      req.LinkName,
		SourceAddress: sourceAddress(c),
		UserAgent:     c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidClick) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		h.logger.Error("failed to track link click", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to track link click",
		})
	}

	return c.JSON(TrackResponse{Success: true, TrackResult: result})
}

// ViewSummary handles GET /api/analytics/track
func (h *AnalyticsHandler) ViewSummary(c *fiber.Ctx) error {
	summary, err := h.analytics.ViewSummary(c.UserContext())
	if err != nil {
		h.logger.Error("failed to summarize views", zap.Error(err))
		return unavailable(c)
	}
	return c.JSON(summary)
}

// LinkClickSummary handles GET /api/analytics/link-click
func (h *AnalyticsHandler) LinkClickSummary(c *fiber.Ctx) error {
	summary, err := h.analytics.LinkClickSummary(c.UserContext())
	if err != nil {
		h.logger.Error("failed to summarize link clicks", zap.Error(err))
		return unavailable(c)
	}
	return c.JSON(summary)
}

// ResetViews handles DELETE /api/analytics/track
func (h *AnalyticsHandler) ResetViews(c *fiber.Ctx) error {
	if err := h.analytics.ResetViews(c.UserContext()); err != nil {
		h.logger.Error("failed to reset views", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to reset views",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "views reset",
	})
}

// ResetClicks handles DELETE /api/analytics/link-click
func (h *AnalyticsHandler) ResetClicks(c *fiber.Ctx) error {
	if err := h.analytics.ResetClicks(c.UserContext()); err != nil {
		h.logger.Error("failed to reset link clicks", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to reset link clicks",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "link clicks reset",
	})
}

func unavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error":       "analytics data unavailable",
		"unavailable": true,
	})
}

func sourceAddress(c *fiber.Ctx) string {
	return httpUtil.SourceAddress(c.Get(httpUtil.HeaderForwardedFor), c.Get(httpUtil.HeaderRealIP))
}
