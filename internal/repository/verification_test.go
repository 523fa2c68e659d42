// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/edumesh/schoolhub/internal/models"
	"github.com/edumesh/schoolhub/internal/repository"
	"github.com/edumesh/schoolhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingVerification(email, code string) *models.PendingVerification {
	now := time.Now()
	return &models.PendingVerification{
		CodeFor:      "signup with code",
		AccountType:  models.AccountUser,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        email,
		PhoneNumber:  "0711111111",
		PasswordHash: "hash",
		Terms:        true,
		Code:         code,
		ExpiresAt:    now.Add(time.Hour),
		LastSentAt:   now,
	}
}

func TestCreatePendingVerification(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	pending := newPendingVerification("ada@example.com", "1234")
	err := repo.CreatePendingVerification(ctx, pending)

	require.NoError(t, err)
	assert.NotZero(t, pending.ID)
	assert.NotZero(t, pending.CreatedAt)
}

func TestCreatePendingVerification_DuplicateEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.CreatePendingVerification(ctx, newPendingVerification("ada@example.com", "1234")))

	err := repo.CreatePendingVerification(ctx, newPendingVerification("ada@example.com", "5678"))

	assert.Error(t, err)
}

func TestGetPendingVerificationByEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	created := newPendingVerification("ada@example.com", "1234")
	require.NoError(t, repo.CreatePendingVerification(ctx, created))

	retrieved, err := repo.GetPendingVerificationByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, retrieved.ID)
	assert.Equal(t, "1234", retrieved.Code)

	_, err = repo.GetPendingVerificationByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRefreshPendingVerification(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.CreatePendingVerification(ctx, newPendingVerification("ada@example.com", "1234")))

	newExpiry := time.Now().Add(2 * time.Hour)
	err := repo.RefreshPendingVerification(ctx, "ada@example.com", "5678", newExpiry, time.Now())
	require.NoError(t, err)

	retrieved, err := repo.GetPendingVerificationByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "5678", retrieved.Code)
	assert.WithinDuration(t, newExpiry, retrieved.ExpiresAt, time.Second)
}

func TestRefreshPendingVerification_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	err := repo.RefreshPendingVerification(ctx, "nobody@example.com", "5678", time.Now(), time.Now())

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMatchPendingVerification(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	created := newPendingVerification("ada@example.com", "1234")
	require.NoError(t, repo.CreatePendingVerification(ctx, created))

	matched, err := repo.MatchPendingVerification(ctx, "ada@example.com", "1234")
	require.NoError(t, err)
	assert.Equal(t, created.ID, matched.ID)

	_, err = repo.MatchPendingVerification(ctx, "ada@example.com", "0000")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMatchPendingVerification_Expired(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	pending := newPendingVerification("ada@example.com", "1234")
	pending.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, repo.CreatePendingVerification(ctx, pending))

	_, err := repo.MatchPendingVerification(ctx, "ada@example.com", "1234")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeletePendingVerification(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	pending := newPendingVerification("ada@example.com", "1234")
	require.NoError(t, repo.CreatePendingVerification(ctx, pending))

	require.NoError(t, repo.DeletePendingVerification(ctx, pending.ID))

	_, err := repo.GetPendingVerificationByEmail(ctx, "ada@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteExpiredPendingVerifications(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	expired := newPendingVerification("old@example.com", "1234")
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, repo.CreatePendingVerification(ctx, expired))

	fresh := newPendingVerification("new@example.com", "5678")
	require.NoError(t, repo.CreatePendingVerification(ctx, fresh))

	require.NoError(t, repo.DeleteExpiredPendingVerifications(ctx))

	_, err := repo.GetPendingVerificationByEmail(ctx, "old@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetPendingVerificationByEmail(ctx, "new@example.com")
	assert.NoError(t, err)
}
