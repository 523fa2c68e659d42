// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

// Package handlers contains the echo HTTP handlers. Handlers bind request
// bodies, call the services and translate domain errors into the JSON
// envelope; they hold no business logic of their own.
package handlers

import (
	"net/http"

	"github.com/edumesh/schoolhub/internal/config"
	"github.com/edumesh/schoolhub/internal/repository"
	"github.com/edumesh/schoolhub/internal/services/auth"
	"github.com/labstack/echo/v4"
)

// Handlers bundles the dependencies shared by all endpoint groups.
type Handlers struct {
	auth *auth.Service
	repo *repository.Repository
	cfg  *config.Config
}

// New creates the handler set.
func New(authService *auth.Service, repo *repository.Repository, cfg *config.Config) *Handlers {
	return &Handlers{auth: authService, repo: repo, cfg: cfg}
}

// envelope is the uniform response body: a message plus optional data.
type envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func respond(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, envelope{Message: message, Data: data})
}

// Root answers the original's liveness check.
func (h *Handlers) Root(c echo.Context) error {
	return c.String(http.StatusOK, "🚀 Server is running...")
}

// Health reports service health for probes.
func (h *Handlers) Health(c echo.Context) error {
	if err := h.repo.DB().PingContext(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
