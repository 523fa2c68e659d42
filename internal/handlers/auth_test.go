// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/edumesh/schoolhub/internal/config"
	"github.com/edumesh/schoolhub/internal/handlers"
	"github.com/edumesh/schoolhub/internal/models"
	"github.com/edumesh/schoolhub/internal/repository"
	"github.com/edumesh/schoolhub/internal/services/auth"
	"github.com/edumesh/schoolhub/internal/testutil"
	"github.com/edumesh/schoolhub/internal/token"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	handlers *handlers.Handlers
	repo     *repository.Repository
	service  *auth.Service
	issuer   *token.Issuer
	echo     *echo.Echo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	cfg := &config.Config{
		Server: config.ServerConfig{Env: "development", FrontendURL: "http://localhost:4200"},
	}
	issuer := token.NewIssuer("access-key", "refresh-key", "reset-key")
	service := auth.NewService(repo, issuer, &testutil.MailRecorder{}, cfg.Server.FrontendURL)
	return &testEnv{
		handlers: handlers.New(service, repo, cfg),
		repo:     repo,
		service:  service,
		issuer:   issuer,
		echo:     echo.New(),
	}
}

const signUpBody = `{
	"first_name": "Ada",
	"last_name": "Lovelace",
	"email": "ada@example.com",
	"phone_number": "0711111111",
	"password": "correct horse battery",
	"confirm_password": "correct horse battery",
	"terms": true
}`

func (env *testEnv) signUpAccount(t *testing.T) {
	t.Helper()
	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/api/auth/sign-up", strings.NewReader(signUpBody))
	require.NoError(t, env.handlers.SignUp(c))
	require.Equal(t, http.StatusCreated, rec.Code)
}

func refreshCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "refreshToken" {
			return cookie
		}
	}
	return nil
}

func TestSignUpHandler(t *testing.T) {
	env := newTestEnv(t)

	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/api/auth/sign-up", strings.NewReader(signUpBody))
	require.NoError(t, env.handlers.SignUp(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "User registered successfully!")
	assert.Contains(t, rec.Body.String(), "accessToken")

	cookie := refreshCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)
}

func TestSignUpHandler_PasswordMismatch(t *testing.T) {
	env := newTestEnv(t)
	body := strings.Replace(signUpBody, `"confirm_password": "correct horse battery"`,
		`"confirm_password": "different"`, 1)

	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/api/auth/sign-up", strings.NewReader(body))
	require.NoError(t, env.handlers.SignUp(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Passwords do not match.")
}

func TestSignUpHandler_UnknownUserType(t *testing.T) {
	env := newTestEnv(t)
	body := `{"user_type": "admin"}`

	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/api/auth/sign-up", strings.NewReader(body))
	require.NoError(t, env.handlers.SignUp(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unknown user type.")
}

func TestLoginHandler(t *testing.T) {
	env := newTestEnv(t)
	env.signUpAccount(t)

	body := `{"user_key": "ada@example.com", "password": "correct horse battery", "remember_user": true}`
	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/api/auth/login", strings.NewReader(body))
	require.NoError(t, env.handlers.Login(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "User Login Successful")

	cookie := refreshCookie(rec)
	require.NotNil(t, cookie)
	assert.Positive(t, cookie.MaxAge)
}

func TestLoginHandler_SessionCookieWithoutRemember(t *testing.T) {
	env := newTestEnv(t)
	env.signUpAccount(t)

	body := `{"user_key": "ada@example.com", "password": "correct horse battery"}`
	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/api/auth/login", strings.NewReader(body))
	require.NoError(t, env.handlers.Login(c))

	require.Equal(t, http.StatusOK, rec.Code)
	cookie := refreshCookie(rec)
	require.NotNil(t, cookie)
	assert.Zero(t, cookie.MaxAge)
}

func TestLoginHandler_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.signUpAccount(t)

	body := `{"user_key": "ada@example.com", "password": "nope"}`
	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/api/auth/login", strings.NewReader(body))
	require.NoError(t, env.handlers.Login(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wrong password!")
}

func TestRefreshTokenHandler(t *testing.T) {
	env := newTestEnv(t)
	env.signUpAccount(t)

	_, pair, err := env.service.Login(context.Background(), models.AccountUser, "ada@example.com", "correct horse battery")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: pair.RefreshToken})
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(req, rec)

	require.NoError(t, env.handlers.RefreshToken(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["accessToken"])
	assert.NotEmpty(t, resp["expiresAt"])
	assert.NotNil(t, refreshCookie(rec))
}

func TestRefreshTokenHandler_NoCookie(t *testing.T) {
	env := newTestEnv(t)

	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/api/auth/refresh-token", nil)
	require.NoError(t, env.handlers.RefreshToken(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "No refresh token")
}

func TestSendVerificationCodeHandler(t *testing.T) {
	env := newTestEnv(t)

	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/api/auth/send-ver-code", strings.NewReader(signUpBody))
	require.NoError(t, env.handlers.SendVerificationCode(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Verification code sent successfully")
}

func TestSendVerificationCodeHandler_RateLimited(t *testing.T) {
	env := newTestEnv(t)

	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/api/auth/send-ver-code", strings.NewReader(signUpBody))
	require.NoError(t, env.handlers.SendVerificationCode(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, rec = testutil.NewEchoContext(env.echo, http.MethodPost, "/api/auth/send-ver-code", strings.NewReader(signUpBody))
	require.NoError(t, env.handlers.SendVerificationCode(c))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please wait 2 more minute(s)")
}

func TestCompareVerificationCodeHandler(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/api/auth/send-ver-code", strings.NewReader(signUpBody))
	require.NoError(t, env.handlers.SendVerificationCode(c))
	require.Equal(t, http.StatusOK, rec.Code)

	pending, err := env.repo.GetPendingVerificationByEmail(ctx, "ada@example.com")
	require.NoError(t, err)

	body := `{"email": "ada@example.com", "code": "` + pending.Code + `"}`
	c, rec = testutil.NewEchoContext(env.echo, http.MethodPost, "/api/auth/compare-ver-code", strings.NewReader(body))
	require.NoError(t, env.handlers.CompareVerificationCode(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Verification successful")
}

func TestCompareVerificationCodeHandler_WrongCode(t *testing.T) {
	env := newTestEnv(t)

	body := `{"email": "ada@example.com", "code": "0000"}`
	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/api/auth/compare-ver-code", strings.NewReader(body))
	require.NoError(t, env.handlers.CompareVerificationCode(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired code")
}

func TestForgotPasswordHandler(t *testing.T) {
	env := newTestEnv(t)
	env.signUpAccount(t)

	body := `{"email": "ada@example.com"}`
	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/api/auth/forgot-password", strings.NewReader(body))
	require.NoError(t, env.handlers.ForgotPassword(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Password reset link sent.")
}

func TestForgotPasswordHandler_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	body := `{"email": "nobody@example.com"}`
	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/api/auth/forgot-password", strings.NewReader(body))
	require.NoError(t, env.handlers.ForgotPassword(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email not found")
}

func TestResetPasswordHandler(t *testing.T) {
	env := newTestEnv(t)
	env.signUpAccount(t)
	ctx := context.Background()

	require.NoError(t, env.service.ForgotPassword(ctx, models.AccountUser, "ada@example.com"))

	account, err := env.repo.Accounts(models.AccountUser).ByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	record, err := env.repo.LatestActiveTokenRecord(ctx, models.AccountUser, account.ID, models.PurposeForgotPassword)
	require.NoError(t, err)

	body := `{"token": "` + record.Token + `", "password": "brand new password"}`
	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/api/auth/reset-password", strings.NewReader(body))
	require.NoError(t, env.handlers.ResetPassword(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Password reset successful!")
}

func TestCreatePasswordHandler(t *testing.T) {
	env := newTestEnv(t)
	account := testutil.NewTestAccount(t, env.repo, models.AccountUser, "ada@example.com", "0711111111")

	body := `{"user_id": ` + jsonInt(account.ID) + `, "password": "new password", "confirm_password": "new password"}`
	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/api/auth/create-password", strings.NewReader(body))
	require.NoError(t, env.handlers.CreatePassword(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Password Creation Successful")
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestRootHandler(t *testing.T) {
	env := newTestEnv(t)

	c, rec := testutil.NewEchoContext(env.echo, http.MethodGet, "/", nil)
	require.NoError(t, env.handlers.Root(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Server is running")
}

func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t)

	c, rec := testutil.NewEchoContext(env.echo, http.MethodGet, "/health", nil)
	require.NoError(t, env.handlers.Health(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
