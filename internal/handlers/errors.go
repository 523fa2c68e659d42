// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/edumesh/schoolhub/internal/services/auth"
	"github.com/edumesh/schoolhub/internal/token"
	"github.com/labstack/echo/v4"
)

// fail maps a domain error onto the response envelope. Unexpected errors are
// logged and masked behind the given fallback message with a 500.
func fail(c echo.Context, err error, fallback string) error {
	status, message := classify(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.Path(), "error", err)
		message = fallback
	}
	return respond(c, status, message, nil)
}

func classify(err error) (int, string) {
	var rateErr *auth.RateLimitError
	if errors.As(err, &rateErr) {
		return http.StatusTooManyRequests,
			fmt.Sprintf("Please wait %d more minute(s) before requesting a new code.", rateErr.WaitMinutes)
	}

	switch {
	case errors.Is(err, auth.ErrMissingFields):
		return http.StatusBadRequest, "Please fill all fields."
	case errors.Is(err, auth.ErrMissingIdentifier):
		return http.StatusBadRequest, "Please provide either email or phone number"
	case errors.Is(err, auth.ErrPasswordMismatch):
		return http.StatusBadRequest, "Passwords do not match."
	case errors.Is(err, auth.ErrAlreadyRegistered):
		return http.StatusBadRequest, "User already registered. Please log in."
	case errors.Is(err, auth.ErrNotRegistered):
		return http.StatusBadRequest, "User not registered. Please sign up."
	case errors.Is(err, auth.ErrWrongPassword):
		return http.StatusBadRequest, "Wrong password!"
	case errors.Is(err, auth.ErrEmailMismatch):
		return http.StatusBadRequest, "Please provide a valid email address."
	case errors.Is(err, auth.ErrPhoneMismatch):
		return http.StatusBadRequest, "Please provide a valid phone number."
	case errors.Is(err, auth.ErrCodeInvalid):
		return http.StatusBadRequest, "Invalid or expired code"
	case errors.Is(err, auth.ErrNoRefreshToken):
		return http.StatusUnauthorized, "No refresh token"
	case errors.Is(err, auth.ErrTokenNotRecognized):
		return http.StatusUnauthorized, "Refresh token not recognized"
	case errors.Is(err, auth.ErrTokenNotFound):
		return http.StatusBadRequest, "Token not found or already used"
	case errors.Is(err, auth.ErrEmailNotFound):
		return http.StatusBadRequest, "Email not found"
	case errors.Is(err, token.ErrTokenExpired):
		return http.StatusUnauthorized, "Token has expired"
	case errors.Is(err, token.ErrTokenInvalid):
		return http.StatusUnauthorized, "Invalid token"
	}
	return http.StatusInternalServerError, ""
}
