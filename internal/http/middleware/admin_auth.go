package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	httpUtil "github.com/sifan077/BioLink/internal/http/util"
	"go.uber.org/zap"
)

// AdminAuth requires a valid "Authorization: Bearer <session>" header.
func AdminAuth(tokens *httpUtil.TokenSigner, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "admin session required",
			})
		}

		if err := tokens.Validate(httpUtil.AdminSubject, token); err != nil {
			if !errors.Is(err, httpUtil.ErrInvalidToken) {
				logger.Error("failed to validate admin session", zap.Error(err))
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": httpUtil.ErrInvalidToken.Error(),
			})
		}

		return c.Next()
	}
}
