package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	httpUtil "github.com/sifan077/BioLink/internal/http/util"
	"go.uber.org/zap"
)

// Logger writes one access-log line per request.
func Logger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", duration),
			zap.String("ip", httpUtil.SourceAddress(c.Get(httpUtil.HeaderForwardedFor), c.Get(httpUtil.HeaderRealIP))),
			zap.String("user_agent", c.Get("User-Agent")),
		}

		if rid := RequestIDFrom(c); rid != "" {
			fields = append(fields, zap.String("request_id", rid))
		}

		switch {
		case err != nil:
			logger.Error("request error", append(fields, zap.Error(err))...)
		case c.Response().StatusCode() >= fiber.StatusInternalServerError:
			logger.Warn("request failed", fields...)
		default:
			logger.Info("request", fields...)
		}

		return err
	}
}