package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"pasargamex-chat/internal/adapter/api"
	apimiddleware "pasargamex-chat/internal/adapter/api/middleware"
	"pasargamex-chat/internal/adapter/api/router"
	"pasargamex-chat/internal/adapter/restapi"
	"pasargamex-chat/internal/infrastructure/auth"
	"pasargamex-chat/internal/infrastructure/ratelimit"
	"pasargamex-chat/internal/infrastructure/websocket"
	"pasargamex-chat/internal/usecase"
	"pasargamex-chat/pkg/config"
	"pasargamex-chat/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.LogLevel, cfg.Environment)
	defer logger.Sync()

	userID, err := auth.ResolveUser(cfg.AuthToken, cfg.UserID, time.Now())
	if err != nil {
		log.Fatalf("Failed to resolve session user: %v", err)
	}

	apiClient := restapi.NewClient(cfg.APIBaseURL, cfg.AuthToken, cfg.RequestTimeout)
	dialer := websocket.NewGorillaDialer(cfg.AuthToken)

	session := usecase.NewChatSession(cfg, userID, apiClient, dialer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := session.Start(ctx); err != nil {
		log.Fatalf("Failed to start chat session: %v", err)
	}

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(apimiddleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	limiter := ratelimit.NewRateLimiter(nil)
	e.Use(apimiddleware.RateLimit(limiter))
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Cleanup(10 * time.Minute)
			}
		}
	}()

	authMiddleware := apimiddleware.NewAuthMiddleware(cfg.AuthToken, userID)
	router.Setup(e, session, authMiddleware)

	go func() {
		logger.Info("Starting chat core for user %s on port %s...", userID, cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed: %v", err)
	}
	session.Close()
}
