// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/edumesh/schoolhub/internal/models"
)

// CreatePendingVerification inserts a new pending-registration record.
// The unique index on email resolves the race where two concurrent signup
// requests both passed the existence check.
func (r *Repository) CreatePendingVerification(ctx context.Context, pending *models.PendingVerification) error {
	pending.CreatedAt = time.Now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO pending_verifications (code_for, account_type, first_name, middle_name, last_name, email, phone_number, password_hash, terms, code, expires_at, last_sent_at, used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pending.CodeFor, pending.AccountType, pending.FirstName, pending.MiddleName,
		pending.LastName, pending.Email, pending.PhoneNumber, pending.PasswordHash,
		pending.Terms, pending.Code, pending.ExpiresAt, pending.LastSentAt,
		pending.Used, pending.CreatedAt)
	if err != nil {
		return err
	}
	pending.ID, err = res.LastInsertId()
	return err
}

// GetPendingVerificationByEmail retrieves the pending record for an email.
func (r *Repository) GetPendingVerificationByEmail(ctx context.Context, email string) (*models.PendingVerification, error) {
	var pending models.PendingVerification
	err := r.db.GetContext(ctx, &pending,
		`SELECT * FROM pending_verifications WHERE email = ?`, email)
	if err != nil {
		return nil, wrapError(err)
	}
	return &pending, nil
}

// RefreshPendingVerification replaces the code and timing fields in place,
// used when a new code is sent for an existing pending registration.
func (r *Repository) RefreshPendingVerification(ctx context.Context, email, code string, expiresAt, lastSentAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE pending_verifications SET code = ?, expires_at = ?, last_sent_at = ? WHERE email = ?`,
		code, expiresAt, lastSentAt, email)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MatchPendingVerification finds a pending record matching email and code
// that is unused and not yet expired. Anything else is ErrNotFound.
func (r *Repository) MatchPendingVerification(ctx context.Context, email, code string) (*models.PendingVerification, error) {
	var pending models.PendingVerification
	err := r.db.GetContext(ctx, &pending,
		`SELECT * FROM pending_verifications WHERE email = ? AND code = ? AND used = 0 AND expires_at > ?`,
		email, code, time.Now())
	if err != nil {
		return nil, wrapError(err)
	}
	return &pending, nil
}

// DeletePendingVerification removes a consumed or abandoned record. Deletion
// is what makes a confirmation single-use.
func (r *Repository) DeletePendingVerification(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_verifications WHERE id = ?`, id)
	return err
}

// DeleteExpiredPendingVerifications clears out records past their expiry.
func (r *Repository) DeleteExpiredPendingVerifications(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_verifications WHERE expires_at < ?`, time.Now())
	return err
}
