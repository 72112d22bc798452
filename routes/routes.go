package routes

import (
	"log/slog"
	"net/http"
	"time"

	_ "github.com/Dosada05/bullpair-events/docs"
	"github.com/Dosada05/bullpair-events/handlers"
	"github.com/Dosada05/bullpair-events/middleware"
	"github.com/Dosada05/bullpair-events/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

type Handlers struct {
	Events        *handlers.EventHandler
	Registrations *handlers.RegistrationHandler
	Days          *handlers.EventDayHandler
	Gameplay      *handlers.GameplayHandler
	Stats         *handlers.StatsHandler
	Health        *handlers.HealthHandler
}

func SetupRoutes(router chi.Router, opts Options, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(chiMiddleware.Timeout(opts.RequestTimeout))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	router.Get("/healthz", h.Health.Health)

	authenticate := middleware.Authenticate(opts.JWTSecret, opts.Logger)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	router.Route("/api", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			// Публичные маршруты
			r.Get("/", h.Events.List)
			r.Get("/{eventID}", h.Events.Get)
			r.Get("/{eventID}/participants", h.Registrations.Participants)
			r.Get("/{eventID}/days", h.Days.List)

			// Любой аутентифицированный пользователь
			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/{eventID}/register", h.Registrations.Register)
				r.Get("/{eventID}/my-registration", h.Registrations.MyRegistration)
			})

			// Только администратор
			r.Group(func(r chi.Router) {
				r.Use(authenticate, adminOnly)
				r.Post("/", h.Events.Create)
				r.Patch("/{eventID}", h.Events.Update)
				r.Delete("/{eventID}", h.Events.Delete)
				r.Patch("/{eventID}/status", h.Events.UpdateStatus)
				r.Post("/{eventID}/winners", h.Events.AddWinners)
				r.Get("/{eventID}/registrations", h.Registrations.List)
				r.Post("/{eventID}/days", h.Days.Create)
			})
		})

		r.With(authenticate, adminOnly).Patch("/registrations/{registrationID}/status", h.Registrations.Decide)

		r.Route("/event-days/{dayID}", func(r chi.Router) {
			r.Get("/", h.Days.Get)
			r.Get("/bullpairs", h.Gameplay.ListEntries)

			r.Group(func(r chi.Router) {
				r.Use(authenticate, adminOnly)
				r.Patch("/status", h.Days.UpdateStatus)
				r.Post("/bullpairs", h.Gameplay.AddPairs)
				r.Post("/results", h.Gameplay.CalculateResults)
			})
		})

		r.Route("/day-bullpairs/{entryID}", func(r chi.Router) {
			r.Use(authenticate, adminOnly)
			r.Patch("/status", h.Gameplay.UpdateEntryStatus)
			r.Patch("/performance", h.Gameplay.RecordPerformance)
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/bullpairs", h.Stats.PairStats)
			r.Get("/teams", h.Stats.TeamStats)
			r.Get("/event-days/{dayID}/leaderboard", h.Stats.Leaderboard)
			r.Get("/dashboard", h.Stats.Dashboard)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":"fail","message":"the requested resource could not be found"}` + "\n"))
	})
}
