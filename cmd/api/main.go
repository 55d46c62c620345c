package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"

	"github.com/gra-paradise/patrol-contest-backend/api/routes"
	"github.com/gra-paradise/patrol-contest-backend/internal/config"
	"github.com/gra-paradise/patrol-contest-backend/internal/handlers"
	"github.com/gra-paradise/patrol-contest-backend/internal/repositories"
	mongorepo "github.com/gra-paradise/patrol-contest-backend/internal/repositories/mongodb"
	"github.com/gra-paradise/patrol-contest-backend/internal/services"
	"github.com/gra-paradise/patrol-contest-backend/pkg/discord"
	"github.com/gra-paradise/patrol-contest-backend/pkg/keymutex"
	"github.com/gra-paradise/patrol-contest-backend/pkg/mongodb"
	"github.com/gra-paradise/patrol-contest-backend/pkg/random"
)

func main() {
	// .env is optional, real deployments set environment variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.LogLevel)

	ctx := context.Background()
	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB.URI)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("Error disconnecting from MongoDB", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	// Repositories
	var contestRepo repositories.ContestRepository = mongorepo.NewContestRepository(db)
	var hoursRepo repositories.HoursRepository = mongorepo.NewHoursRepository(db)
	var participantRepo repositories.ParticipantRepository = mongorepo.NewParticipantRepository(db)
	var operatorRepo repositories.OperatorRepository = mongorepo.NewOperatorRepository(db)

	// Hours recording and lottery draws share one lock registry per contest
	contestLocks := keymutex.NewRW()

	// Services
	contestService := services.NewContestService(contestRepo)
	hoursService := services.NewHoursService(contestRepo, hoursRepo, participantRepo, contestLocks)
	var announcer discord.Announcer = discord.NewMockAnnouncer()
	if cfg.Discord.WebhookURL != "" {
		announcer = discord.NewWebhookAnnouncer(cfg.Discord.WebhookURL)
	}
	lotteryService := services.NewLotteryService(contestRepo, participantRepo, contestLocks, random.NewSecureSource(), announcer)
	authService := services.NewAuthService(operatorRepo, cfg)

	if err := authService.EnsureBootstrapOperator(ctx); err != nil {
		slog.Error("Failed to seed bootstrap operator", "error", err)
		os.Exit(1)
	}

	// Handlers
	deps := routes.HandlerDependencies{
		AuthHandler:    handlers.NewAuthHandler(authService),
		SessionHandler: handlers.NewSessionHandler(hoursService),
		ContestHandler: handlers.NewContestHandler(contestService, hoursService),
		LotteryHandler: handlers.NewLotteryHandler(lotteryService),
	}

	router := routes.SetupRouter(cfg, deps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exiting")
}

func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.HandlerOptions{Level: lvl}.NewJSONHandler(os.Stdout)
	slog.SetDefault(slog.New(handler))
}
