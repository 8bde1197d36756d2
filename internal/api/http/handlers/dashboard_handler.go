package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/remotereps/agent-onboarding/internal/api/dto"
	"github.com/remotereps/agent-onboarding/internal/repository"
)

// DashboardHandler serves the agent dashboard and billing endpoints.
type DashboardHandler struct {
	profiles repository.ProfileRepository
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(profiles repository.ProfileRepository) *DashboardHandler {
	return &DashboardHandler{profiles: profiles}
}

// Dashboard handles GET /me/dashboard.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	profile, err := principalProfile(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDashboardView(profile)})
}

// GetBanking handles GET /me/banking: only the masked last-4 view is ever
// returned.
func (h *DashboardHandler) GetBanking(c *fiber.Ctx) error {
	profile, err := principalProfile(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBankingView(profile.Banking())})
}

// UpdateBanking handles PUT /me/banking.
func (h *DashboardHandler) UpdateBanking(c *fiber.Ctx) error {
	profile, err := principalProfile(c)
	if err != nil {
		return err
	}
	var req dto.BankingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	routing := strings.TrimSpace(req.RoutingNumber)
	account := strings.TrimSpace(req.AccountNumber)
	if routing == "" || account == "" {
		return fiber.NewError(http.StatusBadRequest, "routing and account number required")
	}
	if err := h.profiles.UpdateBanking(c.Context(), profile.ID, routing, account, req.AccountType); err != nil {
		return err
	}
	updated, err := h.profiles.GetByID(c.Context(), profile.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBankingView(updated.Banking())})
}
