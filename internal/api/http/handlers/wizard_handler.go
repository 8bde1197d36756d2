package handlers

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/remotereps/agent-onboarding/internal/api/dto"
	"github.com/remotereps/agent-onboarding/internal/auth"
	"github.com/remotereps/agent-onboarding/internal/domain"
	"github.com/remotereps/agent-onboarding/internal/service"
)

const maxEvidenceBytes = 10 << 20

// WizardHandler exposes the signup wizard endpoints. Routes run behind
// optional auth: a session changes the entry guard and submission behavior.
type WizardHandler struct {
	applications *service.ApplicationService
	auth         *service.AuthService
}

// NewWizardHandler constructs handler.
func NewWizardHandler(applications *service.ApplicationService, authService *service.AuthService) *WizardHandler {
	return &WizardHandler{applications: applications, auth: authService}
}

func currentProfile(c *fiber.Ctx) *domain.Profile {
	if principal, ok := auth.PrincipalFromContext(c); ok {
		return principal.Profile
	}
	return nil
}

// Start handles POST /wizard/start: applies the entry guard and opens a
// draft session.
func (h *WizardHandler) Start(c *fiber.Ctx) error {
	profile := currentProfile(c)
	decision, err := h.applications.Begin(c.Context(), profile)
	if err != nil {
		return err
	}

	if decision.SignOut {
		if principal, ok := auth.PrincipalFromContext(c); ok {
			_ = h.auth.Logout(c.Context(), principal)
		}
	}

	resp := dto.EntryResponse{Redirect: decision.Redirect, SignOut: decision.SignOut}
	if decision.Draft != nil {
		view := dto.NewDraftView(decision.Draft)
		resp.Draft = &view
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Get handles GET /wizard/:session.
func (h *WizardHandler) Get(c *fiber.Ctx) error {
	draft, err := h.applications.Draft(c.Context(), c.Params("session"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDraftView(draft)})
}

// SavePersonal handles PUT /wizard/:session/personal.
func (h *WizardHandler) SavePersonal(c *fiber.Ctx) error {
	var req dto.PersonalStepRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	draft, err := h.applications.SavePersonal(c.Context(), c.Params("session"), service.PersonalInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Password:     req.Password,
		BirthDate:    req.BirthDate,
		GovernmentID: req.GovernmentID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDraftView(draft)})
}

// SaveEquipment handles PUT /wizard/:session/equipment.
func (h *WizardHandler) SaveEquipment(c *fiber.Ctx) error {
	var req dto.EquipmentStepRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	draft, err := h.applications.SaveEquipment(c.Context(), c.Params("session"), service.EquipmentInput{
		CPU:               req.CPU,
		RAM:               req.RAM,
		HasHeadset:        req.HasHeadset,
		HasQuietPlace:     req.HasQuietPlace,
		SalesExperience:   req.SalesExperience,
		ServiceExperience: req.ServiceExperience,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDraftView(draft)})
}

// SaveAvailability handles PUT /wizard/:session/availability.
func (h *WizardHandler) SaveAvailability(c *fiber.Ctx) error {
	var req dto.AvailabilityStepRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	draft, err := h.applications.SaveAvailability(c.Context(), c.Params("session"), service.AvailabilityInput{
		AvailableDays:     req.AvailableDays,
		DayHours:          req.DayHours,
		MeetObligation:    req.MeetObligation,
		LoginDiscord:      req.LoginDiscord,
		CheckEmails:       req.CheckEmails,
		SolveProblems:     req.SolveProblems,
		CompleteTraining:  req.CompleteTraining,
		PersonalStatement: req.PersonalStatement,
		AcceptedTerms:     req.AcceptedTerms,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDraftView(draft)})
}

// UploadEvidence handles POST /wizard/:session/evidence/:kind with a
// multipart file field named "file".
func (h *WizardHandler) UploadEvidence(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "file required")
	}
	if fileHeader.Size > maxEvidenceBytes {
		return fiber.NewError(http.StatusRequestEntityTooLarge, "file too large")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "unreadable upload")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "unreadable upload")
	}

	draft, err := h.applications.StageEvidence(c.Context(), c.Params("session"),
		domain.EvidenceKind(c.Params("kind")), fileHeader.Filename, data)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDraftView(draft)})
}

// Advance handles POST /wizard/:session/advance.
func (h *WizardHandler) Advance(c *fiber.Ctx) error {
	draft, err := h.applications.Advance(c.Context(), c.Params("session"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDraftView(draft)})
}

// Back handles POST /wizard/:session/back.
func (h *WizardHandler) Back(c *fiber.Ctx) error {
	draft, err := h.applications.Back(c.Context(), c.Params("session"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDraftView(draft)})
}

// Submit handles POST /wizard/:session/submit.
func (h *WizardHandler) Submit(c *fiber.Ctx) error {
	profile := currentProfile(c)
	result, err := h.applications.Submit(c.Context(), c.Params("session"), profile)
	if err != nil {
		return err
	}

	resp := dto.SubmitResponse{Status: string(result.Status), SignOut: result.SignOut}
	if result.SignOut {
		if principal, ok := auth.PrincipalFromContext(c); ok {
			h.auth.RevokeSession(c.Context(), principal.TokenID, principal.Profile.ID)
		}
		resp.Redirect = "rejected"
	} else {
		resp.Redirect = "approved"
		if result.Token != "" {
			resp.Auth = &dto.AuthResponse{Token: result.Token, ExpiresAt: result.TokenExpiresAt}
		}
	}
	return c.JSON(fiber.Map{"data": resp})
}
