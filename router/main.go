package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sahilchouksey/partner-hub/handlers"
	admin_handlers "github.com/sahilchouksey/partner-hub/handlers/admin"
	auth_handlers "github.com/sahilchouksey/partner-hub/handlers/auth"
	dashboard_handlers "github.com/sahilchouksey/partner-hub/handlers/dashboard"
	partnership_handlers "github.com/sahilchouksey/partner-hub/handlers/partnership"
	"github.com/sahilchouksey/partner-hub/services/dashboard"
	"github.com/sahilchouksey/partner-hub/utils/middleware"
	"github.com/sahilchouksey/partner-hub/utils/response"
)

// Backend is the partnership API as the routes use it.
type Backend interface {
	partnership_handlers.Store
	admin_handlers.UserStore
	auth_handlers.PasswordResetter
}

// Dependencies are the collaborators the routes are wired to.
type Dependencies struct {
	Backend    Backend
	Boundaries dashboard.BoundarySource
	Security   middleware.SecurityConfig
	Logger     *zap.Logger
	// Now overrides the clock used for status derivation.
	Now func() time.Time
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	middleware.SetupSecurity(app, deps.Security)

	authMiddleware := middleware.NewAuthMiddleware(deps.Logger)

	dashboardHandler := dashboard_handlers.NewDashboardHandler(deps.Backend, deps.Boundaries)
	partnershipHandler := partnership_handlers.NewPartnershipHandler(deps.Backend)
	if deps.Now != nil {
		dashboardHandler.WithClock(deps.Now)
		partnershipHandler.WithClock(deps.Now)
	}
	authHandler := auth_handlers.NewAuthHandler(deps.Backend)
	userHandler := admin_handlers.NewUserHandler(deps.Backend)

	app.Get("/ping", handlers.HandleCheckHealth)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API v1 routes
	v1 := app.Group("/api/v1", authMiddleware.Passthrough())

	// Dashboard
	v1.Get("/dashboard", dashboardHandler.GetDashboard)
	v1.Get("/dashboard/export", dashboardHandler.ExportDashboard)

	// Partnerships
	partnerships := v1.Group("/partnerships")
	partnerships.Get("/", partnershipHandler.ListPartnerships)
	partnerships.Get("/:id", partnershipHandler.GetPartnership)
	partnerships.Put("/:id", partnershipHandler.UpdatePartnership)

	// Auth
	v1.Post("/auth/reset-password", authHandler.ResetPassword)

	// Admin: user and role management
	adminRoutes := v1.Group("/admin", authMiddleware.RequireAdmin())
	adminRoutes.Get("/users", userHandler.ListUsers)
	adminRoutes.Post("/users", userHandler.CreateUser)
	adminRoutes.Get("/users/:id", userHandler.GetUser)
	adminRoutes.Put("/users/:id", userHandler.UpdateUser)

	app.Use(func(c *fiber.Ctx) error {
		return response.NotFound(c, "Route not found")
	})
}
