package routes

import (
	"net/http"

	"github.com/Dosada05/betting-system/handlers"
	"github.com/Dosada05/betting-system/middleware"
	"github.com/Dosada05/betting-system/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Tournament  *handlers.TournamentHandler
	Match       *handlers.MatchHandler
	Bet         *handlers.BetHandler
	Leaderboard *handlers.LeaderboardHandler
	Adjustment  *handlers.AdjustmentHandler
	Diagnostics *handlers.DiagnosticsHandler
	Team        *handlers.TeamHandler
	WebSocket   *handlers.WebSocketHandler
}

func SetupRoutes(router *chi.Mux, h Handlers, authService services.AuthService, betLimiter *middleware.RateLimiter) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(authService)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/swagger/*", httpSwagger.Handler())

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.List)
		r.Get("/{tournamentID}", h.Tournament.GetByID)
		r.Get("/{tournamentID}/matches", h.Match.ListByTournament)
		r.Get("/{tournamentID}/leaderboard", h.Leaderboard.Tournament)

		// Администрирование турниров
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireAdmin)

			r.Post("/", h.Tournament.Create)
			r.Post("/{tournamentID}/activate", h.Tournament.Activate)
			r.Post("/{tournamentID}/finish", h.Tournament.Finish)
			r.Post("/{tournamentID}/logo", h.Tournament.UploadLogo)
			r.Post("/{tournamentID}/bracket", h.Tournament.GenerateBracket)
			r.Get("/{tournamentID}/bracket/validate", h.Tournament.ValidateBracket)
			r.Post("/{tournamentID}/bracket/seeding", h.Tournament.ResolveSeeding)
			r.Post("/{tournamentID}/reconcile", h.Match.Reconcile)
			r.Get("/{tournamentID}/audit", h.Diagnostics.AuditTournament)
			r.Get("/{tournamentID}/adjustments", h.Adjustment.ListByTournament)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", h.Match.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireAdmin)

			r.Post("/{matchID}/result", h.Match.FinalizeResult)
			r.Post("/{matchID}/reopen", h.Match.Reopen)
			r.Post("/{matchID}/betting", h.Match.SetBettingEnabled)
		})
	})

	router.Route("/bets", func(r chi.Router) {
		r.Use(authenticate)

		r.With(betLimiter.Handler).Post("/", h.Bet.Place)
		r.Get("/", h.Bet.ListOwn)
		r.Get("/matches/{matchID}", h.Bet.GetOwnForMatch)
	})

	router.Get("/leaderboard", h.Leaderboard.Global)

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", h.Team.List)
		r.Get("/{teamID}", h.Team.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireAdmin)

			r.Post("/", h.Team.Create)
			r.Post("/{teamID}/logo", h.Team.UploadLogo)
		})
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.RequireAdmin)

		r.Post("/adjustments", h.Adjustment.Create)
		r.Get("/audit", h.Diagnostics.AuditActive)
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)
}
