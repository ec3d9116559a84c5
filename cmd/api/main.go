package main

import (
	"fmt"
	"time"

	"taskpro/configs"
	v1 "taskpro/internal/api/v1"
	"taskpro/internal/api/v1/handlers"
	"taskpro/internal/middleware"
	"taskpro/internal/repository"
	ws "taskpro/internal/websocket"
	"taskpro/pkg/database"
	"taskpro/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

func main() {
	logger.InitLoggers()
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	cfg := configs.LoadConfig()

	// Persistence handles are opened here and injected; nothing reaches
	// them as ambient state.
	db := database.ConnectDB(cfg)
	defer db.Close()
	logger.SystemLogger.Info("Database Connected")

	repository.CreateTableIfNotExists(db)

	rdb := database.ConnectRedis(cfg)
	defer rdb.Close()

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GitHubClientID,
		ClientSecret: cfg.GitHubClientSecret,
		RedirectURL:  cfg.GitHubRedirectURL,
		Scopes:       []string{"read:user", "user:email"},
		Endpoint:     github.Endpoint,
	}

	secret := []byte(cfg.SessionSecret)
	hub := ws.NewHub()
	go hub.Run()

	taskHandler := handlers.NewTaskHandler(repository.NewTaskRepository(db), validator.New(), hub)
	authHandler := handlers.NewAuthHandler(repository.NewUserRepository(db), rdb, oauthCfg, secret)

	app := fiber.New()

	// Middleware
	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))
	app.Use(middleware.AccessGate(secret))

	v1.RegisterRoutes(app, taskHandler, authHandler, hub)

	addr := fmt.Sprintf(":%d", cfg.AppPort)
	logger.SystemLogger.Info("Application ready", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
	}
}
