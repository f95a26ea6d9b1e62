package routes

import (
	"time"

	"github.com/campusworks/booking-backend/internal/config"
	"github.com/campusworks/booking-backend/internal/handlers"
	"github.com/campusworks/booking-backend/internal/middleware"
	"github.com/campusworks/booking-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	professorHandler *handlers.ProfessorHandler,
	appointmentHandler *handlers.AppointmentHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.Protected(cfg), middleware.LoadUser(db), authHandler.Me)

	// Protected routes get their middleware chain per route so the JWT
	// gate never touches the public ones.

	// Professors: slot listing is public, the rest is professor-only
	api.Get("/professors/:profId/slots", professorHandler.FreeSlots)
	api.Post("/professors/availability",
		middleware.Protected(cfg), middleware.LoadUser(db), middleware.RequireRole(models.RoleProfessor),
		professorHandler.PublishAvailability)
	api.Post("/professors/cancel-appointment/:id",
		middleware.Protected(cfg), middleware.LoadUser(db), middleware.RequireRole(models.RoleProfessor),
		professorHandler.CancelAppointment)

	// Appointments
	api.Post("/appointments/book",
		middleware.Protected(cfg), middleware.LoadUser(db), middleware.RequireRole(models.RoleStudent),
		appointmentHandler.Book)
	api.Get("/appointments/my",
		middleware.Protected(cfg), middleware.LoadUser(db),
		appointmentHandler.ListMine)
}
