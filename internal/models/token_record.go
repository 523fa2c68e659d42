// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

package models

import "time"

// Token-record purposes. Login purposes are role-qualified, see
// AccountType.LoginPurpose.
const (
	PurposeRenew          = "renew"
	PurposeForgotPassword = "forgot password"
)

// TokenRecord is the server-side row backing a refresh or password-reset
// token. The signed token is stored verbatim so rotation and revocation can
// invalidate tokens that are still cryptographically valid.
type TokenRecord struct { //nolint:govet // fieldalignment: readability over optimization
	ID          int64       `db:"id" json:"id"`
	AccountID   int64       `db:"account_id" json:"account_id"`
	AccountType AccountType `db:"account_type" json:"account_type"`
	Token       string      `db:"token" json:"-"`
	Purpose     string      `db:"purpose" json:"purpose"`
	ExpiresAt   time.Time   `db:"expires_at" json:"expires_at"`
	Revoked     bool        `db:"revoked" json:"revoked"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// Active reports whether the record may still authorize anything.
func (t *TokenRecord) Active(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
