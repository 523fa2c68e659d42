// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/edumesh/schoolhub/internal/middleware"
	"github.com/edumesh/schoolhub/internal/models"
	"github.com/edumesh/schoolhub/internal/token"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runProtected(t *testing.T, issuer *token.Issuer, authHeader string, roles ...models.AccountType) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := middleware.RequireAuth(issuer, roles...)(func(c echo.Context) error {
		claims := middleware.ClaimsFromContext(c)
		require.NotNil(t, claims)
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, handler(c))
	return rec
}

func TestRequireAuth_NoToken(t *testing.T) {
	issuer := token.NewIssuer("a", "b", "c")

	rec := runProtected(t, issuer, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "no token provided")
}

func TestRequireAuth_ValidToken(t *testing.T) {
	issuer := token.NewIssuer("a", "b", "c")
	signed, _, err := issuer.IssueAccess(42, models.AccountUser)
	require.NoError(t, err)

	rec := runProtected(t, issuer, "Bearer "+signed)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	issuer := token.NewIssuer("a", "b", "c")
	issuer.AccessTTL = -time.Minute
	signed, _, err := issuer.IssueAccess(42, models.AccountUser)
	require.NoError(t, err)

	rec := runProtected(t, issuer, "Bearer "+signed)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"expired":true`)
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	issuer := token.NewIssuer("a", "b", "c")

	rec := runProtected(t, issuer, "Bearer garbage")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestRequireAuth_RoleRestriction(t *testing.T) {
	issuer := token.NewIssuer("a", "b", "c")
	signed, _, err := issuer.IssueAccess(42, models.AccountUser)
	require.NoError(t, err)

	rec := runProtected(t, issuer, "Bearer "+signed, models.AccountSchool)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = runProtected(t, issuer, "Bearer "+signed, models.AccountSchool, models.AccountUser)
	assert.Equal(t, http.StatusOK, rec.Code)
}
