package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/remotereps/agent-onboarding/internal/api/dto"
	"github.com/remotereps/agent-onboarding/internal/auth"
	"github.com/remotereps/agent-onboarding/internal/domain"
	"github.com/remotereps/agent-onboarding/internal/service"
)

// TrainingHandler exposes the training gate endpoints.
type TrainingHandler struct {
	training *service.TrainingService
}

// NewTrainingHandler constructs handler.
func NewTrainingHandler(training *service.TrainingService) *TrainingHandler {
	return &TrainingHandler{training: training}
}

func principalProfile(c *fiber.Ctx) (*domain.Profile, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Profile == nil {
		return nil, fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	return principal.Profile, nil
}

// State handles GET /training/state.
func (h *TrainingHandler) State(c *fiber.Ctx) error {
	profile, err := principalProfile(c)
	if err != nil {
		return err
	}
	state, err := h.training.State(c.Context(), profile)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTrainingStateView(state)})
}

// ReportProgress handles POST /training/video/progress.
func (h *TrainingHandler) ReportProgress(c *fiber.Ctx) error {
	profile, err := principalProfile(c)
	if err != nil {
		return err
	}
	var req dto.ProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	result, err := h.training.ReportProgress(c.Context(), profile.ID, req.Position)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ProgressResponse{Position: result.Position, Warned: result.Warned}})
}

// CompleteVideo handles POST /training/video/complete.
func (h *TrainingHandler) CompleteVideo(c *fiber.Ctx) error {
	profile, err := principalProfile(c)
	if err != nil {
		return err
	}
	if err := h.training.CompleteVideo(c.Context(), profile.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"video_watched": true}})
}

// ReportPlayerFailure handles POST /training/video/fallback.
func (h *TrainingHandler) ReportPlayerFailure(c *fiber.Ctx) error {
	profile, err := principalProfile(c)
	if err != nil {
		return err
	}
	availableAt, err := h.training.ReportPlayerFailure(c.Context(), profile.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"manual_complete_at": availableAt}})
}

// CompleteVideoManually handles POST /training/video/manual-complete.
func (h *TrainingHandler) CompleteVideoManually(c *fiber.Ctx) error {
	profile, err := principalProfile(c)
	if err != nil {
		return err
	}
	if err := h.training.CompleteVideoManually(c.Context(), profile.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"video_watched": true}})
}

// StartQuiz handles POST /training/quiz/start.
func (h *TrainingHandler) StartQuiz(c *fiber.Ctx) error {
	profile, err := principalProfile(c)
	if err != nil {
		return err
	}
	question, err := h.training.StartQuiz(c.Context(), profile)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewQuestionView(question)})
}

// CurrentQuestion handles GET /training/quiz/current.
func (h *TrainingHandler) CurrentQuestion(c *fiber.Ctx) error {
	profile, err := principalProfile(c)
	if err != nil {
		return err
	}
	question, err := h.training.CurrentQuestion(c.Context(), profile.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewQuestionView(question)})
}

// AnswerQuestion handles POST /training/quiz/answer.
func (h *TrainingHandler) AnswerQuestion(c *fiber.Ctx) error {
	profile, err := principalProfile(c)
	if err != nil {
		return err
	}
	var req dto.AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	outcome, err := h.training.AnswerQuestion(c.Context(), profile.ID, req.QuestionIndex, req.Choice)
	if err != nil {
		return err
	}

	resp := dto.AnswerResponse{}
	if outcome.Next != nil {
		resp.Next = dto.NewQuestionView(outcome.Next)
	}
	if outcome.Result != nil {
		resp.Score = &outcome.Result.Score
		resp.Passed = &outcome.Result.Passed
	}
	return c.JSON(fiber.Map{"data": resp})
}
