// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"strings"
	"time"

	"github.com/edumesh/schoolhub/internal/models"
)

// AccountStore is the per-role account capability used by the auth flows.
// Repository.Accounts binds a role once so that no query ever selects its
// table or column from a request string.
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	ByID(ctx context.Context, id int64) (*models.Account, error)
	ByEmail(ctx context.Context, email string) (*models.Account, error)
	ByIdentifier(ctx context.Context, identifier string) (*models.Account, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// Accounts returns the AccountStore for one role.
func (r *Repository) Accounts(role models.AccountType) AccountStore {
	return &roleAccounts{repo: r, role: role}
}

type roleAccounts struct {
	repo *Repository
	role models.AccountType
}

func (s *roleAccounts) Create(ctx context.Context, account *models.Account) error {
	account.AccountType = s.role
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	res, err := s.repo.db.ExecContext(ctx,
		`INSERT INTO accounts (account_code, account_type, avatar_url, first_name, middle_name, last_name, email, phone_number, password_hash, terms, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.AccountCode, account.AccountType, account.AvatarURL,
		account.FirstName, account.MiddleName, account.LastName,
		account.Email, account.PhoneNumber, account.PasswordHash,
		account.Terms, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		return err
	}
	account.ID, err = res.LastInsertId()
	return err
}

func (s *roleAccounts) ByID(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	err := s.repo.db.GetContext(ctx, &account,
		`SELECT * FROM accounts WHERE id = ? AND account_type = ?`, id, s.role)
	if err != nil {
		return nil, wrapError(err)
	}
	return &account, nil
}

func (s *roleAccounts) ByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := s.repo.db.GetContext(ctx, &account,
		`SELECT * FROM accounts WHERE email = ? AND account_type = ?`, email, s.role)
	if err != nil {
		return nil, wrapError(err)
	}
	return &account, nil
}

// ByIdentifier looks an account up by email or phone number in one query.
func (s *roleAccounts) ByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	var account models.Account
	err := s.repo.db.GetContext(ctx, &account,
		`SELECT * FROM accounts WHERE (email = ? OR phone_number = ?) AND account_type = ?`,
		identifier, identifier, s.role)
	if err != nil {
		return nil, wrapError(err)
	}
	return &account, nil
}

func (s *roleAccounts) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.repo.db.GetContext(ctx, &count,
		`SELECT count(*) FROM accounts WHERE email = ? AND account_type = ?`, email, s.role)
	return count > 0, err
}

func (s *roleAccounts) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := s.repo.db.ExecContext(ctx,
		`UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ? AND account_type = ?`,
		passwordHash, time.Now(), id, s.role)
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

// AccountCodeExists reports whether a human-facing account code is taken.
// Codes are unique across all roles.
func (r *Repository) AccountCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT count(*) FROM accounts WHERE account_code = ?`, code)
	return count > 0, err
}

// GetAccountByID retrieves an account of any role.
func (r *Repository) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	if err := r.db.GetContext(ctx, &account, `SELECT * FROM accounts WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &account, nil
}

// ListAccountsParams controls the paginated listing.
type ListAccountsParams struct {
	Role  models.AccountType
	Page  int
	Limit int
	Name  string
}

// ListAccounts returns one page of accounts plus the unpaginated total,
// optionally filtered by a case-insensitive name fragment.
func (r *Repository) ListAccounts(ctx context.Context, p ListAccountsParams) ([]models.Account, int64, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}

	where := `account_type = ?`
	args := []any{p.Role}
	if p.Name != "" {
		where += ` AND (first_name LIKE ? COLLATE NOCASE OR middle_name LIKE ? COLLATE NOCASE OR last_name LIKE ? COLLATE NOCASE)`
		pattern := "%" + strings.TrimSpace(p.Name) + "%"
		args = append(args, pattern, pattern, pattern)
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT count(*) FROM accounts WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	accounts := []models.Account{}
	query := `SELECT * FROM accounts WHERE ` + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, p.Limit, (p.Page-1)*p.Limit)
	if err := r.db.SelectContext(ctx, &accounts, query, args...); err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// UpdateAccountProfile overwrites the mutable profile fields of an account.
func (r *Repository) UpdateAccountProfile(ctx context.Context, account *models.Account) error {
	account.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET avatar_url = ?, first_name = ?, middle_name = ?, last_name = ?, phone_number = ?, updated_at = ? WHERE id = ?`,
		account.AvatarURL, account.FirstName, account.MiddleName, account.LastName,
		account.PhoneNumber, account.UpdatedAt, account.ID)
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

// DeleteAccount deletes an account by id.
func (r *Repository) DeleteAccount(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
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
