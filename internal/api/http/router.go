package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/remotereps/agent-onboarding/internal/api/http/handlers"
	"github.com/remotereps/agent-onboarding/internal/auth"
	"github.com/remotereps/agent-onboarding/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Wizard         *handlers.WizardHandler
	Training       *handlers.TrainingHandler
	Dashboard      *handlers.DashboardHandler
	Supervisor     *handlers.SupervisorHandler
	Internal       *handlers.InternalHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	authProtected.Post("/logout", cfg.Auth.Logout)
	authProtected.Get("/session", cfg.Auth.Session)
	authProtected.Post("/password/change", cfg.Auth.ChangePassword)

	// Wizard routes run behind optional auth: the entry guard and submission
	// behave differently with and without a session.
	wizard := app.Group("/wizard", cfg.AuthMiddleware.HandleOptional)
	wizard.Post("/start", cfg.Wizard.Start)
	wizard.Get("/:session", cfg.Wizard.Get)
	wizard.Put("/:session/personal", cfg.Wizard.SavePersonal)
	wizard.Put("/:session/equipment", cfg.Wizard.SaveEquipment)
	wizard.Put("/:session/availability", cfg.Wizard.SaveAvailability)
	wizard.Post("/:session/evidence/:kind", cfg.Wizard.UploadEvidence)
	wizard.Post("/:session/advance", cfg.Wizard.Advance)
	wizard.Post("/:session/back", cfg.Wizard.Back)
	wizard.Post("/:session/submit", cfg.Wizard.Submit)

	training := app.Group("/training", cfg.AuthMiddleware.Handle, auth.RequireApproved())
	training.Get("/state", cfg.Training.State)
	training.Post("/video/progress", cfg.Training.ReportProgress)
	training.Post("/video/complete", cfg.Training.CompleteVideo)
	training.Post("/video/fallback", cfg.Training.ReportPlayerFailure)
	training.Post("/video/manual-complete", cfg.Training.CompleteVideoManually)
	training.Post("/quiz/start", cfg.Training.StartQuiz)
	training.Get("/quiz/current", cfg.Training.CurrentQuestion)
	training.Post("/quiz/answer", cfg.Training.AnswerQuestion)

	me := app.Group("/me", cfg.AuthMiddleware.Handle, auth.RequireApproved())
	me.Get("/dashboard", cfg.Dashboard.Dashboard)
	me.Get("/banking", cfg.Dashboard.GetBanking)
	me.Put("/banking", cfg.Dashboard.UpdateBanking)

	supervisor := app.Group("/supervisor", cfg.AuthMiddleware.Handle,
		auth.RequireRole(domain.RoleSupervisor, domain.RoleAdmin))
	supervisor.Get("/agents", cfg.Supervisor.ListAgents)
	supervisor.Get("/agents/:id", cfg.Supervisor.GetAgent)
	supervisor.Put("/agents/:id/admin", cfg.Supervisor.UpdateAdminFields)
	supervisor.Get("/agents/:id/evidence", cfg.Supervisor.GetEvidence)

	internal := app.Group("/internal", cfg.AuthMiddleware.Handle,
		auth.RequireRole(domain.RoleSupervisor, domain.RoleAdmin))
	internal.Get("/application-status/:userID", cfg.Internal.ApplicationStatus)
	internal.Get("/credentials/:userID", cfg.Internal.Credentials)
	internal.Get("/metrics", cfg.Internal.Metrics)
}
