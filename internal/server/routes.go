// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

package server

import (
	"github.com/edumesh/schoolhub/internal/handlers"
	"github.com/edumesh/schoolhub/internal/middleware"
	"github.com/edumesh/schoolhub/internal/token"
	"github.com/labstack/echo/v4"
)

func setupRoutes(e *echo.Echo, h *handlers.Handlers, issuer *token.Issuer) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)

	authGroup := e.Group("/api/auth")
	authGroup.POST("/sign-up", h.SignUp)
	authGroup.POST("/send-ver-code", h.SendVerificationCode)
	authGroup.POST("/compare-ver-code", h.CompareVerificationCode)
	authGroup.POST("/login", h.Login)
	authGroup.POST("/create-password", h.CreatePassword)
	authGroup.POST("/refresh-token", h.RefreshToken)
	authGroup.POST("/forgot-password", h.ForgotPassword)
	authGroup.POST("/reset-password", h.ResetPassword)

	users := e.Group("/api/users")
	users.GET("/all", h.ListUsers)
	users.GET("/:id", h.GetUser)
	users.POST("", h.CreateUser)
	users.PUT("/:id", h.UpdateUser, middleware.RequireAuth(issuer))
	users.DELETE("/:id", h.DeleteUser, middleware.RequireAuth(issuer))

	notifications := e.Group("/api/notifications", middleware.RequireAuth(issuer))
	notifications.POST("", h.CreateNotification)
	notifications.GET("/:userID", h.ListNotifications)
}
