// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

// Package token mints and verifies the signed credentials used by the auth
// flows. Access, refresh and reset tokens are signed with distinct keys so a
// leaked token of one kind can never be replayed as another.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/edumesh/schoolhub/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired marks a token whose embedded expiry has elapsed.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenInvalid covers every other verification failure.
	ErrTokenInvalid = errors.New("invalid token")
)

// Default lifetimes. Callers tune them through the Issuer fields.
const (
	DefaultAccessTTL  = 30 * 24 * time.Hour
	DefaultRefreshTTL = 30 * 24 * time.Hour
	DefaultResetTTL   = 15 * time.Minute
)

// Claims is the payload carried by every token: subject id plus role.
type Claims struct {
	ID   int64              `json:"id"`
	Role models.AccountType `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies tokens. The zero value is not usable; construct
// with NewIssuer.
type Issuer struct {
	accessKey  []byte
	refreshKey []byte
	resetKey   []byte

	AccessTTL  time.Duration
	RefreshTTL time.Duration
	ResetTTL   time.Duration
}

// NewIssuer creates an Issuer with the three signing keys and default
// lifetimes.
func NewIssuer(accessKey, refreshKey, resetKey string) *Issuer {
	return &Issuer{
		accessKey:  []byte(accessKey),
		refreshKey: []byte(refreshKey),
		resetKey:   []byte(resetKey),
		AccessTTL:  DefaultAccessTTL,
		RefreshTTL: DefaultRefreshTTL,
		ResetTTL:   DefaultResetTTL,
	}
}

// IssueAccess mints an access token for the subject. The returned expiry is
// computed alongside the token so callers can store or display it without
// decoding the token again.
func (i *Issuer) IssueAccess(id int64, role models.AccountType) (string, time.Time, error) {
	return i.sign(id, role, i.accessKey, i.AccessTTL)
}

// IssueRefresh mints a refresh token, signed with the refresh key.
func (i *Issuer) IssueRefresh(id int64, role models.AccountType) (string, time.Time, error) {
	return i.sign(id, role, i.refreshKey, i.RefreshTTL)
}

// IssueReset mints a short-lived password-reset token.
func (i *Issuer) IssueReset(id int64, role models.AccountType) (string, time.Time, error) {
	return i.sign(id, role, i.resetKey, i.ResetTTL)
}

func (i *Issuer) sign(id int64, role models.AccountType, key []byte, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		ID:   id,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyAccess decodes and validates an access token.
func (i *Issuer) VerifyAccess(raw string) (*Claims, error) {
	return i.verify(raw, i.accessKey)
}

// VerifyRefresh decodes and validates a refresh token.
func (i *Issuer) VerifyRefresh(raw string) (*Claims, error) {
	return i.verify(raw, i.refreshKey)
}

// VerifyReset decodes and validates a password-reset token.
func (i *Issuer) VerifyReset(raw string) (*Claims, error) {
	return i.verify(raw, i.resetKey)
}

func (i *Issuer) verify(raw string, key []byte) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if _, err := models.ParseAccountType(string(claims.Role)); err != nil {
		return nil, ErrTokenInvalid
	}
	return &claims, nil
}
