// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"time"

	"github.com/edumesh/schoolhub/internal/models"
	"github.com/edumesh/schoolhub/internal/services/auth"
	"github.com/labstack/echo/v4"
)

// refreshCookieName is the cookie carrying the refresh token.
const refreshCookieName = "refreshToken"

// rememberMaxAge is the cookie lifetime when the client asked to stay
// logged in. Without it the cookie is a session cookie.
const rememberMaxAge = 30 * 24 * time.Hour

// SignUpRequest is the shared registration body.
type SignUpRequest struct {
	UserType        string `json:"user_type"`
	AvatarURL       string `json:"avatar_url"`
	FirstName       string `json:"first_name"`
	MiddleName      string `json:"middle_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phone_number"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Terms           bool   `json:"terms"`
}

func (r *SignUpRequest) params(role models.AccountType) auth.SignUpParams {
	return auth.SignUpParams{
		Role:            role,
		AvatarURL:       r.AvatarURL,
		FirstName:       r.FirstName,
		MiddleName:      r.MiddleName,
		LastName:        r.LastName,
		Email:           r.Email,
		PhoneNumber:     r.PhoneNumber,
		Password:        r.Password,
		ConfirmPassword: r.ConfirmPassword,
		Terms:           r.Terms,
	}
}

// tokenPayload is the token data returned by signup and login.
type tokenPayload struct {
	UserType     models.AccountType `json:"userType"`
	AccessToken  string             `json:"accessToken"`
	ExpiresAt    time.Time          `json:"expiresAt"`
	RefreshToken string             `json:"refreshToken"`
}

// parseRole reads a role string from a request body, defaulting to "user".
func parseRole(s string) (models.AccountType, error) {
	if s == "" {
		return models.AccountUser, nil
	}
	return models.ParseAccountType(s)
}

// SignUp handles POST /api/auth/sign-up: direct registration plus immediate
// login.
func (h *Handlers) SignUp(c echo.Context) error {
	var req SignUpRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request body.", nil)
	}
	role, err := parseRole(req.UserType)
	if err != nil {
		return respond(c, http.StatusBadRequest, "Unknown user type.", nil)
	}

	_, pair, err := h.auth.SignUp(c.Request().Context(), req.params(role))
	if err != nil {
		return fail(c, err, "Server error during registration")
	}

	h.setRefreshCookie(c, pair.RefreshToken, true)

	return respond(c, http.StatusCreated, "User registered successfully!", tokenPayload{
		UserType:     role,
		AccessToken:  pair.AccessToken,
		ExpiresAt:    pair.AccessExpiresAt,
		RefreshToken: pair.RefreshToken,
	})
}

// SendVerificationCode handles POST /api/auth/send-ver-code.
func (h *Handlers) SendVerificationCode(c echo.Context) error {
	var req SignUpRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request body.", nil)
	}
	role, err := parseRole(req.UserType)
	if err != nil {
		return respond(c, http.StatusBadRequest, "Unknown user type.", nil)
	}

	resent, err := h.auth.RequestCode(c.Request().Context(), req.params(role))
	if err != nil {
		return fail(c, err, "Server error while sending verification code.")
	}

	if resent {
		return respond(c, http.StatusOK, "A new verification code has been sent to your email.", nil)
	}
	return respond(c, http.StatusOK, "Verification code sent successfully to your email or spam.", nil)
}

// CompareVerificationCodeRequest is the body for the code exchange.
type CompareVerificationCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// CompareVerificationCode handles POST /api/auth/compare-ver-code.
func (h *Handlers) CompareVerificationCode(c echo.Context) error {
	var req CompareVerificationCodeRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request body.", nil)
	}

	if _, err := h.auth.ConfirmCode(c.Request().Context(), req.Email, req.Code); err != nil {
		return fail(c, err, "Server error during email verification")
	}

	return respond(c, http.StatusOK, "Verification successful. User registered and welcome email sent.", nil)
}

// LoginRequest is the login body. UserKey is an email or phone number.
type LoginRequest struct {
	UserType     string `json:"user_type"`
	UserKey      string `json:"user_key"`
	Password     string `json:"password"`
	RememberUser bool   `json:"remember_user"`
}

// Login handles POST /api/auth/login.
func (h *Handlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request body.", nil)
	}
	role, err := parseRole(req.UserType)
	if err != nil {
		return respond(c, http.StatusBadRequest, "Unknown user type.", nil)
	}

	_, pair, err := h.auth.Login(c.Request().Context(), role, req.UserKey, req.Password)
	if err != nil {
		return fail(c, err, "Server error during login")
	}

	h.setRefreshCookie(c, pair.RefreshToken, req.RememberUser)

	return respond(c, http.StatusOK, "User Login Successful", tokenPayload{
		UserType:     role,
		AccessToken:  pair.AccessToken,
		ExpiresAt:    pair.AccessExpiresAt,
		RefreshToken: pair.RefreshToken,
	})
}

// CreatePasswordRequest is the body for creating or replacing a password.
type CreatePasswordRequest struct {
	UserType        string `json:"user_type"`
	UserID          int64  `json:"user_id"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// CreatePassword handles POST /api/auth/create-password.
func (h *Handlers) CreatePassword(c echo.Context) error {
	var req CreatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request body.", nil)
	}
	role, err := parseRole(req.UserType)
	if err != nil {
		return respond(c, http.StatusBadRequest, "Unknown user type.", nil)
	}

	if err := h.auth.SetPassword(c.Request().Context(), role, req.UserID, req.Password, req.ConfirmPassword); err != nil {
		return fail(c, err, "Server Error while creating password")
	}

	return respond(c, http.StatusOK, "Password Creation Successful", nil)
}

// RefreshToken handles POST /api/auth/refresh-token: reads the refresh
// cookie, rotates it and returns a fresh access token.
func (h *Handlers) RefreshToken(c echo.Context) error {
	raw := ""
	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		raw = cookie.Value
	}

	pair, err := h.auth.Refresh(c.Request().Context(), raw)
	if err != nil {
		return fail(c, err, "Server error during refresh token auth.")
	}

	h.setRefreshCookie(c, pair.RefreshToken, true)

	return c.JSON(http.StatusOK, map[string]any{
		"accessToken": pair.AccessToken,
		"expiresAt":   pair.AccessExpiresAt,
	})
}

// ForgotPasswordRequest asks for a reset link.
type ForgotPasswordRequest struct {
	UserType string `json:"user_type"`
	Email    string `json:"email"`
}

// ForgotPassword handles POST /api/auth/forgot-password.
func (h *Handlers) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request body.", nil)
	}
	role, err := parseRole(req.UserType)
	if err != nil {
		return respond(c, http.StatusBadRequest, "Unknown user type.", nil)
	}

	if err := h.auth.ForgotPassword(c.Request().Context(), role, req.Email); err != nil {
		return fail(c, err, "Server error during password reset")
	}

	return respond(c, http.StatusOK, "Password reset link sent.", nil)
}

// ResetPasswordRequest finishes the reset flow.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *Handlers) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request body.", nil)
	}

	if err := h.auth.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return fail(c, err, "Server error during password reset")
	}

	return respond(c, http.StatusOK, "Password reset successful!", nil)
}

// setRefreshCookie writes the refresh token cookie. The cookie policy is the
// same for login and refresh: http-only, SameSite=None for cross-site
// clients, Secure in production. Without remember it is a session cookie.
func (h *Handlers) setRefreshCookie(c echo.Context, token string, remember bool) {
	cookie := &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteNoneMode,
	}
	if remember {
		cookie.MaxAge = int(rememberMaxAge.Seconds())
	}
	c.SetCookie(cookie)
}
