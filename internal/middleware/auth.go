// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

// Package middleware holds the echo middleware shared by the route groups.
package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/edumesh/schoolhub/internal/models"
	"github.com/edumesh/schoolhub/internal/token"
	"github.com/labstack/echo/v4"
)

// claimsContextKey is where RequireAuth stores the verified claims.
const claimsContextKey = "auth.claims"

// ClaimsFromContext returns the verified claims set by RequireAuth, or nil.
func ClaimsFromContext(c echo.Context) *token.Claims {
	claims, _ := c.Get(claimsContextKey).(*token.Claims)
	return claims
}

// RequireAuth verifies the Bearer access token and optionally restricts the
// route to the given roles. Expired tokens get an explicit hint so clients
// know to refresh instead of re-authenticating.
func RequireAuth(issuer *token.Issuer, allowedRoles ...models.AccountType) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, map[string]any{
					"message": "Not authorized, no token provided",
				})
			}

			claims, err := issuer.VerifyAccess(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				if errors.Is(err, token.ErrTokenExpired) {
					return c.JSON(http.StatusUnauthorized, map[string]any{
						"message": "Token expired",
						"expired": true,
					})
				}
				return c.JSON(http.StatusForbidden, map[string]any{
					"message": "Not authorized, invalid token",
				})
			}

			if len(allowedRoles) > 0 && !slices.Contains(allowedRoles, claims.Role) {
				return c.JSON(http.StatusForbidden, map[string]any{
					"message": "Forbidden: insufficient permissions",
				})
			}

			c.Set(claimsContextKey, claims)
			return next(c)
		}
	}
}
