package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/remotereps/agent-onboarding/internal/api/dto"
	"github.com/remotereps/agent-onboarding/internal/domain"
	"github.com/remotereps/agent-onboarding/internal/service"
)

// SupervisorHandler exposes the supervisor dashboard endpoints.
type SupervisorHandler struct {
	review *service.ReviewService
}

// NewSupervisorHandler constructs handler.
func NewSupervisorHandler(review *service.ReviewService) *SupervisorHandler {
	return &SupervisorHandler{review: review}
}

// ListAgents handles GET /supervisor/agents?search=.
func (h *SupervisorHandler) ListAgents(c *fiber.Ctx) error {
	profiles, err := h.review.ListAgents(c.Context(), c.Query("search"))
	if err != nil {
		return err
	}
	summaries := make([]dto.AgentSummary, 0, len(profiles))
	for i := range profiles {
		summaries = append(summaries, dto.NewAgentSummary(&profiles[i]))
	}
	return c.JSON(fiber.Map{"data": summaries, "count": len(summaries)})
}

// GetAgent handles GET /supervisor/agents/:id.
func (h *SupervisorHandler) GetAgent(c *fiber.Ctx) error {
	profile, err := h.review.GetProfile(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAgentSummary(profile)})
}

// UpdateAdminFields handles PUT /supervisor/agents/:id/admin. Only the
// administrative fields are writable from this surface.
func (h *SupervisorHandler) UpdateAdminFields(c *fiber.Ctx) error {
	supervisor, err := principalProfile(c)
	if err != nil {
		return err
	}
	var req dto.AdminFieldsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	profile, err := h.review.UpdateAdminFields(c.Context(), supervisor.ID, c.Params("id"), domain.AdminFields{
		AgentID:         req.AgentID,
		AgentStanding:   domain.AgentStanding(req.AgentStanding),
		LeadSource:      req.LeadSource,
		StartDate:       req.StartDate,
		SupervisorNotes: req.SupervisorNotes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAgentSummary(profile)})
}

// GetEvidence handles GET /supervisor/agents/:id/evidence.
func (h *SupervisorHandler) GetEvidence(c *fiber.Ctx) error {
	evidence, err := h.review.GetEvidence(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.EvidenceView{
		IDImageURL:        evidence.IDImageURL,
		SpeedTestURL:      evidence.SpeedTestURL,
		SystemSettingsURL: evidence.SystemSettingsURL,
	}})
}
