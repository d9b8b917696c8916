package handler

import "github.com/gofiber/fiber/v2"

// Guards are route-level middlewares applied by the Register methods.
// A nil guard lets requests through.
type Guards struct {
	Admin     fiber.Handler
	RateLimit fiber.Handler
}

func chain(guard, h fiber.Handler) []fiber.Handler {
	if guard == nil {
		return []fiber.Handler{h}
	}
	return []fiber.Handler{guard, h}
}
