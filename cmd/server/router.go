package main

import (
	"context"
	"time"

	"trailhead/cmd/server/handlers"
	authHandlers "trailhead/cmd/server/handlers/auth"
	"trailhead/cmd/server/handlers/httperr"
	reviewsHandlers "trailhead/cmd/server/handlers/reviews"
	toursHandlers "trailhead/cmd/server/handlers/tours"
	usersHandlers "trailhead/cmd/server/handlers/users"
	"trailhead/cmd/server/middlewares"
	"trailhead/internal/clients/mongo"
	"trailhead/internal/config"
	"trailhead/internal/logger"
	authServices "trailhead/internal/services/auth"
	reviewsServices "trailhead/internal/services/reviews"
	toursServices "trailhead/internal/services/tours"
	usersServices "trailhead/internal/services/users"

	_ "trailhead/docs" // Load swagger docs

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

const (
	RateLimitExpiration = 1 * time.Minute
)

// setupRouter configures and returns a Fiber app with all routes
func setupRouter(ctx context.Context, cfg config.Config, mail authServices.Mailer) *fiber.App {
	v := validator.New()

	app := fiber.New(fiber.Config{
		ErrorHandler: httperr.NewHandler(cfg.IsDevelopment(), logger.L()),
		Immutable:    true, // make Fiber copy all request-derived strings
	})

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Content-Type, Authorization",
	}))

	if cfg.RouteMetricsEnabled {
		middlewares.AttachMetrics(app)
	}

	// Health check endpoint, outside versioned API to appease scanners and to avoid logging
	app.Get("/healthz", handlers.Healthz)

	app.Get("/docs/*", swagger.HandlerDefault)

	var v1 fiber.Router
	if cfg.IsDevelopment() {
		v1 = app.Group("/api/v1", fiberlogger.New())
	} else {
		v1 = app.Group("/api/v1")
	}

	// Repositories
	usersRepo, err := mongo.NewUsersRepo(ctx, mongo.DB())
	if err != nil {
		logger.L().Error("failed to create users repository", "error", err)
		panic(err)
	}
	toursRepo, err := mongo.NewToursRepo(ctx, mongo.DB())
	if err != nil {
		logger.L().Error("failed to create tours repository", "error", err)
		panic(err)
	}
	reviewsRepo, err := mongo.NewReviewsRepo(ctx, mongo.DB())
	if err != nil {
		logger.L().Error("failed to create reviews repository", "error", err)
		panic(err)
	}

	// Services
	tokens := authServices.NewTokenService(cfg)
	authSvc := authServices.NewService(usersRepo, tokens, mail, cfg, logger.L())
	usersSvc := usersServices.NewService(usersRepo, logger.L())
	toursSvc := toursServices.NewService(toursRepo, logger.L())
	reviewsSvc := reviewsServices.NewService(reviewsRepo, toursRepo, logger.L())

	// Handlers
	authH := authHandlers.NewHandlers(authSvc, v)
	usersH := usersHandlers.NewHandlers(usersSvc, v)
	toursH := toursHandlers.NewHandlers(toursSvc, v)
	reviewsH := reviewsHandlers.NewHandlers(reviewsSvc, v)

	protect := middlewares.Protect(cfg, usersRepo)
	adminOnly := middlewares.RestrictTo(authServices.RoleAdmin)
	loginLimiter := middlewares.BuildRateLimiter(cfg.LoginRatePerMin, RateLimitExpiration)

	// Auth routes
	usersGrp := v1.Group("/users")
	usersGrp.Post("/signup", loginLimiter, authH.SignUp)
	usersGrp.Post("/login", loginLimiter, authH.LogIn)
	usersGrp.Post("/forgot-password", loginLimiter, authH.ForgotPassword)
	usersGrp.Patch("/reset-password/:token", loginLimiter, authH.ResetPassword)
	usersGrp.Patch("/update-password", protect, authH.UpdatePassword)

	// Self-service profile routes
	usersGrp.Get("/me", protect, usersH.Me)
	usersGrp.Patch("/update-me", protect, usersH.UpdateMe)
	usersGrp.Delete("/delete-me", protect, usersH.DeleteMe)

	// Admin user management
	usersGrp.Get("/", protect, adminOnly, usersH.List)
	usersGrp.Get("/:id", protect, adminOnly, usersH.Get)
	usersGrp.Patch("/:id", protect, adminOnly, usersH.Update)
	usersGrp.Delete("/:id", protect, adminOnly, usersH.Delete)

	// Tour routes
	staff := middlewares.RestrictTo(authServices.RoleAdmin, authServices.RoleLeadGuide)
	toursGrp := v1.Group("/tours")
	toursGrp.Get("/", toursH.List)
	toursGrp.Get("/stats", toursH.Stats)
	toursGrp.Get("/:id", toursH.Get)
	toursGrp.Post("/", protect, staff, toursH.Create)
	toursGrp.Patch("/:id", protect, staff, toursH.Update)
	toursGrp.Delete("/:id", protect, staff, toursH.Delete)

	// Nested tour reviews
	toursGrp.Get("/:tourId/reviews", protect, reviewsH.List)
	toursGrp.Post("/:tourId/reviews", protect, middlewares.RestrictTo(authServices.RoleUser), reviewsH.Create)

	// Review routes
	reviewsGrp := v1.Group("/reviews", protect)
	reviewsGrp.Get("/", reviewsH.List)
	reviewsGrp.Get("/:id", reviewsH.Get)
	reviewsGrp.Post("/", middlewares.RestrictTo(authServices.RoleUser), reviewsH.Create)
	reviewsGrp.Patch("/:id", middlewares.RestrictTo(authServices.RoleUser, authServices.RoleAdmin), reviewsH.Update)
	reviewsGrp.Delete("/:id", adminOnly, reviewsH.Delete)

	return app
}
