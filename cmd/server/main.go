package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"gameboard/backend/internal/card"
	"gameboard/backend/internal/config"
	"gameboard/backend/internal/database"
	"gameboard/backend/internal/events"
	"gameboard/backend/internal/handler"
	"gameboard/backend/internal/hub"
	"gameboard/backend/internal/logging"

	"go.uber.org/zap"

	// Registers the OpenAPI document served under /swagger.
	_ "gameboard/backend/docs"
)

// @title           Game Board API
// @version         1.0
// @description     Browse recreational games and join open slots.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := config.LoadConfig(); err != nil {
		panic(err)
	}
	cfg := config.AppConfig

	logger, undo, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		panic(err)
	}
	defer undo()
	defer logger.Sync()

	if cfg.FileErr != nil {
		zap.L().Warn(".env file not found, loading from environment variables", zap.Error(cfg.FileErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to the database
	database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	games := database.NewGameRepository(database.DB)

	h := hub.NewHub()
	var publisher events.Publisher = events.LocalPublisher{Hub: h}
	if cfg.RedisAddr != "" {
		rdb, err := events.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			zap.L().Fatal("Redis setup failed", zap.Error(err))
		}
		defer rdb.Close()
		publisher = events.NewRedisPublisher(rdb)
		go func() {
			if err := events.Relay(ctx, rdb, h); err != nil {
				zap.L().Error("Game event relay stopped", zap.Error(err))
			}
		}()
	}

	cards := card.NewRegistry(games, card.Options{
		RequireIdentity: cfg.RequireIdentity,
		JoinTimeout:     cfg.JoinTimeout,
		CacheSize:       cfg.CardCacheSize,
	})

	api := handler.New(handler.Deps{
		Games:     games,
		Users:     database.NewUserRepository(database.DB),
		Cards:     cards,
		Hub:       h,
		Publisher: publisher,
		JWTSecret: cfg.JWTSecret,
	})
	router := handler.NewRouter(api, handler.RouterOptions{JoinRatePerMinute: cfg.JoinRatePerMinute})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		zap.L().Info("Server is running", zap.String("addr", srv.Addr),
			zap.String("swagger", "http://localhost:"+cfg.Port+"/swagger/index.html"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Server exited", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Graceful shutdown failed", zap.Error(err))
	}
}
