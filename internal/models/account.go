// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

package models

import (
	"fmt"
	"time"
)

// AccountType discriminates the account variants sharing the accounts table.
// It is also the role string carried in every token.
type AccountType string

const (
	AccountUser        AccountType = "user"
	AccountSchool      AccountType = "school"
	AccountParticipant AccountType = "participant"
)

// ParseAccountType validates a role string coming from a request body or a
// decoded token. Unknown roles are rejected before any query runs.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(s) {
	case AccountUser, AccountSchool, AccountParticipant:
		return AccountType(s), nil
	}
	return "", fmt.Errorf("unknown account type %q", s)
}

// LoginPurpose returns the token-record purpose tag for this role's
// login refresh tokens, e.g. "user login".
func (t AccountType) LoginPurpose() string {
	return string(t) + " login"
}

// Account is one registered user, school or participant.
type Account struct { //nolint:govet // fieldalignment: readability over optimization
	ID           int64       `db:"id" json:"id"`
	AccountCode  string      `db:"account_code" json:"user_code"` // e.g. S123456
	AccountType  AccountType `db:"account_type" json:"-"`
	AvatarURL    string      `db:"avatar_url" json:"avatar_url"`
	FirstName    string      `db:"first_name" json:"first_name"`
	MiddleName   string      `db:"middle_name" json:"middle_name"`
	LastName     string      `db:"last_name" json:"last_name"`
	Email        string      `db:"email" json:"email"`
	PhoneNumber  string      `db:"phone_number" json:"phone_number"`
	PasswordHash string      `db:"password_hash" json:"-"`
	Terms        bool        `db:"terms" json:"terms"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}
