// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/edumesh/schoolhub/internal/database"
	"github.com/edumesh/schoolhub/internal/models"
	"github.com/edumesh/schoolhub/internal/repository"
	"github.com/edumesh/schoolhub/internal/services/mailer"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plaintext password behind every fixture account.
const TestPassword = "sup3r-secret!"

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestAccount creates an account of the given role with TestPassword.
func NewTestAccount(t *testing.T, repo *repository.Repository, role models.AccountType, email, phone string) *models.Account {
	t.Helper()
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)
	account := &models.Account{
		AccountCode:  "S" + phone[len(phone)-6:],
		FirstName:    "Test",
		LastName:     "Account",
		Email:        email,
		PhoneNumber:  phone,
		PasswordHash: string(hash),
		Terms:        true,
	}
	require.NoError(t, repo.Accounts(role).Create(ctx, account))
	return account
}

// MailRecorder is a mailer.Enqueuer that captures messages for assertions.
type MailRecorder struct {
	mu       sync.Mutex
	messages []mailer.Message
}

// Enqueue records the message.
func (r *MailRecorder) Enqueue(msg mailer.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

// Messages returns a copy of everything enqueued so far.
func (r *MailRecorder) Messages() []mailer.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mailer.Message(nil), r.messages...)
}

// Last returns the most recently enqueued message.
func (r *MailRecorder) Last(t *testing.T) mailer.Message {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.messages)
	return r.messages[len(r.messages)-1]
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}
