package http

import (
	"errors"

	"job-copilot/internal/model"
	"job-copilot/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// fail maps a use case error onto a status code. Input errors echo their
// message; anything unexpected answers the generic fallback and is logged.
func (h *Handler) fail(c *fiber.Ctx, err error, fallback string) error {
	var verr *model.ValidationError
	switch {
	case errors.Is(err, usecase.ErrConsent):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User consent is required for auto-apply."})
	case errors.Is(err, usecase.ErrInput), errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, usecase.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found."})
	case errors.Is(err, usecase.ErrQueueFull):
		c.Set(fiber.HeaderRetryAfter, "1")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Too many workflows in progress, try again shortly."})
	}
	h.logger.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fallback})
}
