package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/remotereps/agent-onboarding/internal/observability"
	"github.com/remotereps/agent-onboarding/internal/service"
)

// InternalHandler serves the service-to-service lookups and the operational
// metrics snapshot.
type InternalHandler struct {
	review  *service.ReviewService
	metrics *observability.Metrics
}

// NewInternalHandler constructs handler.
func NewInternalHandler(review *service.ReviewService, metrics *observability.Metrics) *InternalHandler {
	return &InternalHandler{review: review, metrics: metrics}
}

// ApplicationStatus handles GET /internal/application-status/:userID.
func (h *InternalHandler) ApplicationStatus(c *fiber.Ctx) error {
	status, err := h.review.ApplicationStatus(c.Context(), c.Params("userID"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"user_id": c.Params("userID"),
		"status":  status,
	}})
}

// Credentials handles GET /internal/credentials/:userID.
func (h *InternalHandler) Credentials(c *fiber.Ctx) error {
	role, err := h.review.Credentials(c.Context(), c.Params("userID"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"user_id":     c.Params("userID"),
		"credentials": role,
	}})
}

// Metrics handles GET /internal/metrics.
func (h *InternalHandler) Metrics(c *fiber.Ctx) error {
	requests, errs := h.metrics.Snapshot()
	return c.JSON(fiber.Map{"data": fiber.Map{
		"requests": requests,
		"errors":   errs,
	}})
}
