package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/betting-system/brackets"
	"github.com/Dosada05/betting-system/config"
	"github.com/Dosada05/betting-system/db"
	"github.com/Dosada05/betting-system/handlers"
	"github.com/Dosada05/betting-system/middleware"
	"github.com/Dosada05/betting-system/repositories"
	api "github.com/Dosada05/betting-system/routes"
	"github.com/Dosada05/betting-system/services"
	"github.com/Dosada05/betting-system/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

const auditInterval = 5 * time.Minute // период фоновой сверки очков

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Файловое хранилище (Cloudflare R2) опционально: без него работает
	// всё, кроме загрузки логотипов.
	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 storage is not configured, logo uploads disabled")
	}

	// WebSocket Hub
	wsHub := brackets.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Репозитории
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	betRepo := repositories.NewPostgresBetRepository(dbConn)
	adjustmentRepo := repositories.NewPostgresAdjustmentRepository(dbConn)
	leaderboardRepo := repositories.NewPostgresLeaderboardRepository(dbConn)
	logger.Info("Repositories initialized")

	// Сервисы
	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey)
	scoringService := services.NewScoringService(matchRepo, betRepo)
	progressionService := services.NewProgressionService(matchRepo)
	bracketService := services.NewBracketService(dbConn, tournamentRepo, matchRepo, wsHub)
	matchService := services.NewMatchService(dbConn, matchRepo, tournamentRepo, teamRepo, scoringService, progressionService, wsHub)
	betService := services.NewBetService(betRepo, matchRepo, tournamentRepo, adjustmentRepo)
	tournamentService := services.NewTournamentService(tournamentRepo, matchRepo, bracketService, uploader)
	teamService := services.NewTeamService(teamRepo, uploader)
	leaderboardService := services.NewLeaderboardService(leaderboardRepo, tournamentRepo)
	adjustmentService := services.NewAdjustmentService(adjustmentRepo, betRepo, tournamentRepo)
	diagnosticsService := services.NewDiagnosticsService(tournamentRepo, matchRepo, betRepo)
	logger.Info("Services initialized")

	// Фоновая сверка начисленных очков по активным турнирам
	go func() {
		ticker := time.NewTicker(auditInterval)
		defer ticker.Stop()
		logger.Info("points audit scheduler started", slog.Duration("interval", auditInterval))

		for range ticker.C {
			reports, err := diagnosticsService.AuditActiveTournaments(context.Background())
			if err != nil {
				logger.Error("scheduled audit failed", slog.Any("error", err))
				continue
			}
			for _, report := range reports {
				if !report.Clean() {
					logger.Warn("points audit found problems",
						slog.Int("tournament_id", report.TournamentID),
						slog.Int("discrepancies", len(report.Discrepancies)),
						slog.Int("integrity_faults", len(report.IntegrityFaults)))
				}
			}
		}
	}()

	// HTTP-обработчики и маршруты
	betLimiter := middleware.NewRateLimiter(cfg.BetRateLimitRPS, cfg.BetRateLimitBurst)
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		Tournament:  handlers.NewTournamentHandler(tournamentService, bracketService),
		Match:       handlers.NewMatchHandler(matchService, progressionService),
		Bet:         handlers.NewBetHandler(betService),
		Leaderboard: handlers.NewLeaderboardHandler(leaderboardService),
		Adjustment:  handlers.NewAdjustmentHandler(adjustmentService),
		Diagnostics: handlers.NewDiagnosticsHandler(diagnosticsService),
		Team:        handlers.NewTeamHandler(teamService),
		WebSocket:   handlers.NewWebSocketHandler(wsHub),
	}, authService, betLimiter)
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
