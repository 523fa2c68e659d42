// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/edumesh/schoolhub/internal/models"
)

// CreateTokenRecord inserts a refresh or reset token record.
func (r *Repository) CreateTokenRecord(ctx context.Context, rec *models.TokenRecord) error {
	rec.CreatedAt = time.Now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO token_records (account_id, account_type, token, purpose, expires_at, revoked, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.AccountID, rec.AccountType, rec.Token, rec.Purpose, rec.ExpiresAt, rec.Revoked, rec.CreatedAt)
	if err != nil {
		return err
	}
	rec.ID, err = res.LastInsertId()
	return err
}

// LatestTokenRecord returns the newest record for (role, account, purpose)
// ordered by expiry, regardless of revocation state. Used by the login upsert.
func (r *Repository) LatestTokenRecord(ctx context.Context, role models.AccountType, accountID int64, purpose string) (*models.TokenRecord, error) {
	var rec models.TokenRecord
	err := r.db.GetContext(ctx, &rec,
		`SELECT * FROM token_records WHERE account_type = ? AND account_id = ? AND purpose = ? ORDER BY expires_at DESC LIMIT 1`,
		role, accountID, purpose)
	if err != nil {
		return nil, wrapError(err)
	}
	return &rec, nil
}

// LatestActiveTokenRecord returns the newest non-revoked record for
// (role, account, purpose). Used by the reset-password flow.
func (r *Repository) LatestActiveTokenRecord(ctx context.Context, role models.AccountType, accountID int64, purpose string) (*models.TokenRecord, error) {
	var rec models.TokenRecord
	err := r.db.GetContext(ctx, &rec,
		`SELECT * FROM token_records WHERE account_type = ? AND account_id = ? AND purpose = ? AND revoked = 0 ORDER BY expires_at DESC LIMIT 1`,
		role, accountID, purpose)
	if err != nil {
		return nil, wrapError(err)
	}
	return &rec, nil
}

// AnyTokenRecord returns any record for the subject. The refresh flow only
// needs existence: rotation keeps at most one live record per subject, so a
// missing row means the presented token was already rotated away.
func (r *Repository) AnyTokenRecord(ctx context.Context, role models.AccountType, accountID int64) (*models.TokenRecord, error) {
	var rec models.TokenRecord
	err := r.db.GetContext(ctx, &rec,
		`SELECT * FROM token_records WHERE account_type = ? AND account_id = ? LIMIT 1`,
		role, accountID)
	if err != nil {
		return nil, wrapError(err)
	}
	return &rec, nil
}

// ReplaceTokenRecord updates a record in place with a fresh token and expiry,
// clearing the revoked flag.
func (r *Repository) ReplaceTokenRecord(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE token_records SET token = ?, expires_at = ?, revoked = 0 WHERE id = ?`,
		token, expiresAt, id)
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

// DeleteTokenRecordsForSubject removes every record for (role, account).
// Rotation is delete-all-then-insert: issuing a new refresh token caps the
// subject to exactly one valid session.
func (r *Repository) DeleteTokenRecordsForSubject(ctx context.Context, role models.AccountType, accountID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM token_records WHERE account_type = ? AND account_id = ?`, role, accountID)
	return err
}

// RevokeTokenRecord flags a record so it can never authorize again.
func (r *Repository) RevokeTokenRecord(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE token_records SET revoked = 1 WHERE id = ?`, id)
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
