package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/BioLink/internal/app/model"
	"github.com/sifan077/BioLink/internal/app/service"
	"go.uber.org/zap"
)

// LiveStatusChecker answers live-status queries per platform.
type LiveStatusChecker interface {
	Check(ctx context.Context, platform, identifier string) (*model.LiveStatus, error)
}

// LiveDeps groups dependencies required by live-status handlers.
type LiveDeps struct {
	Logger *zap.Logger
	Live   LiveStatusChecker
}

// LiveHandler exposes the Kick and YouTube live-status probes.
type LiveHandler struct {
	logger *zap.Logger
	live   LiveStatusChecker
}

// NewLiveHandler creates a live-status handler with the provided dependencies.
func NewLiveHandler(deps LiveDeps) *LiveHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LiveHandler{
		logger: logger,
		live:   deps.Live,
	}
}

// Register wires live-status routes onto the provided router.
func (h *LiveHandler) Register(router fiber.Router) {
	router.Get("/api/kick/live", h.Kick)
	router.Get("/api/youtube/live-status", h.YouTube)
}

// Kick handles GET /api/kick/live?username=
func (h *LiveHandler) Kick(c *fiber.Ctx) error {
	return h.check(c, model.PlatformKick, "username")
}

// YouTube handles GET /api/youtube/live-status?channelId=
func (h *LiveHandler) YouTube(c *fiber.Ctx) error {
	return h.check(c, model.PlatformYouTube, "channelId")
}

func (h *LiveHandler) check(c *fiber.Ctx, platform, param string) error {
	identifier := c.Query(param)
	if identifier == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": param + " is required",
		})
	}

	status, err := h.live.Check(c.UserContext(), platform, identifier)
	if err != nil {
		code, message := liveErrorStatus(err)
		return c.Status(code).JSON(fiber.Map{
			"isLive": false,
			"error":  message,
		})
	}

	return c.JSON(status)
}

func liveErrorStatus(err error) (int, string) {
	var upstream *service.UpstreamError
	switch {
	case errors.Is(err, service.ErrChannelNotFound):
		return fiber.StatusNotFound, "channel not found"
	case errors.Is(err, service.ErrUnknownPlatform):
		return fiber.StatusServiceUnavailable, "live status is not configured"
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, "live status check timed out"
	case errors.As(err, &upstream):
		return fiber.StatusBadGateway, "failed to fetch live status"
	default:
		return fiber.StatusBadGateway, "failed to check live status"
	}
}
