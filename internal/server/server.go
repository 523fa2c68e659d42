// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

// Package server wires configuration, storage, services and routes into a
// running HTTP server with graceful shutdown.
package server

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

	"github.com/edumesh/schoolhub/internal/config"
	"github.com/edumesh/schoolhub/internal/database"
	"github.com/edumesh/schoolhub/internal/handlers"
	appmiddleware "github.com/edumesh/schoolhub/internal/middleware"
	"github.com/edumesh/schoolhub/internal/repository"
	authservice "github.com/edumesh/schoolhub/internal/services/auth"
	"github.com/edumesh/schoolhub/internal/services/mailer"
	"github.com/edumesh/schoolhub/internal/token"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/urfave/cli/v3"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	if cfg.Auth.AccessSecret == "" || cfg.Auth.RefreshSecret == "" || cfg.Auth.ResetSecret == "" {
		return fmt.Errorf("ACCESS_SECRET, REFRESH_SECRET and RESET_SECRET must be set")
	}

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"env", cfg.Server.Env,
	)

	// Database
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := database.Close(db); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	repo := repository.New(db)
	issuer := token.NewIssuer(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret, cfg.Auth.ResetSecret)

	// Mail queue
	var sender mailer.Sender
	if cfg.SMTP.Host == "" {
		slog.Warn("no SMTP host configured, emails will be logged only")
		sender = mailer.LogSender{}
	} else {
		sender, err = mailer.NewSMTPSender(&cfg.SMTP)
		if err != nil {
			return fmt.Errorf("failed to configure mailer: %w", err)
		}
	}
	queue := mailer.NewQueue(sender, cfg.Mail.QueueSize)
	queueCtx, stopQueue := context.WithCancel(context.Background())
	queue.Start(queueCtx)
	defer func() {
		stopQueue()
		queue.Close()
	}()

	authService := authservice.NewService(repo, issuer, queue, cfg.Server.FrontendURL)
	h := handlers.New(authService, repo, cfg)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowCredentials: true,
	}))
	e.Use(appmiddleware.RequestLogger(slog.Default()))

	setupRoutes(e, h, issuer)

	return startWithGracefulShutdown(ctx, e, cfg)
}

func startWithGracefulShutdown(ctx context.Context, e *echo.Echo, cfg *config.Config) error {
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("server running", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
