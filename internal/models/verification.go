// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

package models

import "time"

// PendingVerification holds a prospective registration awaiting email-code
// confirmation. At most one row exists per email; resends update the row in
// place and a successful confirmation deletes it.
type PendingVerification struct { //nolint:govet // fieldalignment: readability over optimization
	ID           int64       `db:"id" json:"id"`
	CodeFor      string      `db:"code_for" json:"code_for"`
	AccountType  AccountType `db:"account_type" json:"-"`
	FirstName    string      `db:"first_name" json:"first_name"`
	MiddleName   string      `db:"middle_name" json:"middle_name"`
	LastName     string      `db:"last_name" json:"last_name"`
	Email        string      `db:"email" json:"email"`
	PhoneNumber  string      `db:"phone_number" json:"phone_number"`
	PasswordHash string      `db:"password_hash" json:"-"`
	Terms        bool        `db:"terms" json:"terms"`
	Code         string      `db:"code" json:"-"`
	ExpiresAt    time.Time   `db:"expires_at" json:"expires_at"`
	LastSentAt   time.Time   `db:"last_sent_at" json:"last_sent_at"`
	Used         bool        `db:"used" json:"used"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
}
