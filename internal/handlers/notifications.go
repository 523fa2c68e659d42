// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"strconv"

	"github.com/edumesh/schoolhub/internal/models"
	"github.com/labstack/echo/v4"
)

// CreateNotificationRequest is the body for sending a notification.
type CreateNotificationRequest struct {
	SenderID   int64  `json:"senderId"`
	ReceiverID int64  `json:"receiverId"`
	Message    string `json:"message"`
}

// CreateNotification handles POST /api/notifications.
func (h *Handlers) CreateNotification(c echo.Context) error {
	var req CreateNotificationRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request body.", nil)
	}
	if req.SenderID == 0 || req.ReceiverID == 0 || req.Message == "" {
		return respond(c, http.StatusBadRequest, "Please provide all required fields", nil)
	}

	notification := &models.Notification{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Message:    req.Message,
	}
	if err := h.repo.CreateNotification(c.Request().Context(), notification); err != nil {
		return fail(c, err, "Server Error while creating notification")
	}

	return c.JSON(http.StatusCreated, notification)
}

// ListNotifications handles GET /api/notifications/:userID.
func (h *Handlers) ListNotifications(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid user id.", nil)
	}

	notifications, err := h.repo.ListNotificationsForReceiver(c.Request().Context(), userID)
	if err != nil {
		return fail(c, err, "Server Error while fetching notifications")
	}

	return respond(c, http.StatusOK, "Notifications fetched successfully", notifications)
}
