// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

// Package auth implements the authentication and token lifecycle flows:
// signup (direct and code-verified), login, refresh rotation and the
// forgot/reset-password sequence. Every flow re-reads the stores before
// writing; nothing is cached across requests.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/edumesh/schoolhub/internal/models"
	"github.com/edumesh/schoolhub/internal/repository"
	"github.com/edumesh/schoolhub/internal/services/mailer"
	"github.com/edumesh/schoolhub/internal/token"
	"golang.org/x/crypto/bcrypt"
)

const (
	// ResendCooldown limits how often a pending registration may request a
	// fresh verification code.
	ResendCooldown = 2 * time.Minute

	// VerificationTTL is how long a verification code stays valid.
	VerificationTTL = time.Hour

	verificationCodeLength = 4
	accountCodeAttempts    = 1000
)

// Service orchestrates the auth flows over the injected stores.
type Service struct {
	repo        *repository.Repository
	tokens      *token.Issuer
	mail        mailer.Enqueuer
	frontendURL string
}

// NewService wires the orchestrator. frontendURL is the base for emailed
// links.
func NewService(repo *repository.Repository, tokens *token.Issuer, mail mailer.Enqueuer, frontendURL string) *Service {
	return &Service{
		repo:        repo,
		tokens:      tokens,
		mail:        mail,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
	}
}

// SignUpParams holds the prospective account payload shared by the direct
// and code-verified registration flows.
type SignUpParams struct { //nolint:govet // fieldalignment: readability over optimization
	Role            models.AccountType
	AvatarURL       string
	FirstName       string
	MiddleName      string
	LastName        string
	Email           string
	PhoneNumber     string
	Password        string
	ConfirmPassword string
	Terms           bool
}

func (p *SignUpParams) validate() error {
	if p.FirstName == "" || p.LastName == "" || p.Email == "" ||
		p.PhoneNumber == "" || p.Password == "" || p.ConfirmPassword == "" {
		return ErrMissingFields
	}
	if p.Password != p.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return nil
}

// TokenPair is one issued access/refresh pair. AccessExpiresAt is computed
// independently of the token's embedded expiry for storage and display.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// SignUp registers an account directly and logs it in: the refresh token is
// persisted and the pair returned so the handler can set the cookie.
func (s *Service) SignUp(ctx context.Context, p SignUpParams) (*models.Account, *TokenPair, error) {
	if err := p.validate(); err != nil {
		return nil, nil, err
	}

	accounts := s.repo.Accounts(p.Role)

	exists, err := accounts.EmailExists(ctx, p.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("checking existing account: %w", err)
	}
	if exists {
		return nil, nil, ErrAlreadyRegistered
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hashing password: %w", err)
	}

	accountCode, err := s.generateAccountCode(ctx)
	if err != nil {
		return nil, nil, err
	}

	account := &models.Account{
		AccountCode:  accountCode,
		AvatarURL:    p.AvatarURL,
		FirstName:    p.FirstName,
		MiddleName:   p.MiddleName,
		LastName:     p.LastName,
		Email:        p.Email,
		PhoneNumber:  p.PhoneNumber,
		PasswordHash: string(passwordHash),
		Terms:        p.Terms,
	}
	if err := accounts.Create(ctx, account); err != nil {
		// The unique constraints resolve the race where two concurrent
		// signups both passed the existence check.
		return nil, nil, fmt.Errorf("creating account: %w", err)
	}

	pair, err := s.issueLoginTokens(ctx, account.ID, p.Role)
	if err != nil {
		return nil, nil, err
	}

	s.mail.Enqueue(mailer.WelcomeMessage(account.Email, account.FirstName))

	slog.Info("register_success", "account_id", account.ID, "role", p.Role, "email", account.Email)
	return account, pair, nil
}

// CreateAccount registers an account without logging it in: no tokens are
// issued and no cookie is involved. Password is optional; accounts created
// this way set one later through the create-password flow.
func (s *Service) CreateAccount(ctx context.Context, p SignUpParams) (*models.Account, error) {
	if p.FirstName == "" || p.LastName == "" || p.Email == "" || p.PhoneNumber == "" {
		return nil, ErrMissingFields
	}

	accounts := s.repo.Accounts(p.Role)

	exists, err := accounts.EmailExists(ctx, p.Email)
	if err != nil {
		return nil, fmt.Errorf("checking existing account: %w", err)
	}
	if exists {
		return nil, ErrAlreadyRegistered
	}

	var passwordHash string
	if p.Password != "" {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, fmt.Errorf("hashing password: %w", hashErr)
		}
		passwordHash = string(hash)
	}

	accountCode, err := s.generateAccountCode(ctx)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		AccountCode:  accountCode,
		AvatarURL:    p.AvatarURL,
		FirstName:    p.FirstName,
		MiddleName:   p.MiddleName,
		LastName:     p.LastName,
		Email:        p.Email,
		PhoneNumber:  p.PhoneNumber,
		PasswordHash: passwordHash,
		Terms:        p.Terms,
	}
	if err := accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	slog.Info("account_created", "account_id", account.ID, "role", p.Role)
	return account, nil
}

// RequestCode starts or refreshes a code-verified registration. It returns
// true when an existing pending record was refreshed rather than created.
func (s *Service) RequestCode(ctx context.Context, p SignUpParams) (bool, error) {
	if err := p.validate(); err != nil {
		return false, err
	}

	exists, err := s.repo.Accounts(p.Role).EmailExists(ctx, p.Email)
	if err != nil {
		return false, fmt.Errorf("checking existing account: %w", err)
	}
	if exists {
		return false, ErrAlreadyRegistered
	}

	code := token.GenerateCode(verificationCodeLength)
	now := time.Now()
	expiresAt := now.Add(VerificationTTL)

	pending, err := s.repo.GetPendingVerificationByEmail(ctx, p.Email)
	switch {
	case err == nil:
		elapsed := now.Sub(pending.LastSentAt)
		if elapsed < ResendCooldown {
			wait := int(math.Ceil(ResendCooldown.Minutes() - elapsed.Minutes()))
			return false, &RateLimitError{WaitMinutes: wait}
		}
		if err := s.repo.RefreshPendingVerification(ctx, p.Email, code, expiresAt, now); err != nil {
			return false, fmt.Errorf("refreshing pending verification: %w", err)
		}
		s.mail.Enqueue(mailer.VerificationCodeMessage(p.Email, p.FirstName, code))
		slog.Info("verification_code_resent", "email", p.Email)
		return true, nil

	case errors.Is(err, repository.ErrNotFound):
		passwordHash, hashErr := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			return false, fmt.Errorf("hashing password: %w", hashErr)
		}
		record := &models.PendingVerification{
			CodeFor:      "signup with code",
			AccountType:  p.Role,
			FirstName:    p.FirstName,
			MiddleName:   p.MiddleName,
			LastName:     p.LastName,
			Email:        p.Email,
			PhoneNumber:  p.PhoneNumber,
			PasswordHash: string(passwordHash),
			Terms:        p.Terms,
			Code:         code,
			ExpiresAt:    expiresAt,
			LastSentAt:   now,
		}
		if err := s.repo.CreatePendingVerification(ctx, record); err != nil {
			return false, fmt.Errorf("creating pending verification: %w", err)
		}
		s.mail.Enqueue(mailer.VerificationCodeMessage(p.Email, p.FirstName, code))
		slog.Info("verification_code_sent", "email", p.Email)
		return false, nil

	default:
		return false, fmt.Errorf("looking up pending verification: %w", err)
	}
}

// ConfirmCode exchanges a pending registration for a real account. Deleting
// the pending record is what makes a code single-use; a second confirmation
// with the same code fails the match.
func (s *Service) ConfirmCode(ctx context.Context, email, code string) (*models.Account, error) {
	pending, err := s.repo.MatchPendingVerification(ctx, email, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCodeInvalid
		}
		return nil, fmt.Errorf("matching verification code: %w", err)
	}

	accountCode, err := s.generateAccountCode(ctx)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		AccountCode: accountCode,
		FirstName:   pending.FirstName,
		MiddleName:  pending.MiddleName,
		LastName:    pending.LastName,
		Email:       pending.Email,
		PhoneNumber: pending.PhoneNumber,
		// The pending record already holds the bcrypt hash; never re-hash.
		PasswordHash: pending.PasswordHash,
		Terms:        pending.Terms,
	}
	if err := s.repo.Accounts(pending.AccountType).Create(ctx, account); err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	if err := s.repo.DeletePendingVerification(ctx, pending.ID); err != nil {
		return nil, fmt.Errorf("deleting pending verification: %w", err)
	}

	s.mail.Enqueue(mailer.VerifiedWelcomeMessage(account.Email, account.FirstName))

	slog.Info("verification_success", "account_id", account.ID, "email", account.Email)
	return account, nil
}

// Login authenticates by email or phone number and issues a token pair.
func (s *Service) Login(ctx context.Context, role models.AccountType, userKey, password string) (*models.Account, *TokenPair, error) {
	userKey = strings.TrimSpace(userKey)
	if userKey == "" {
		return nil, nil, ErrMissingIdentifier
	}
	if password == "" {
		return nil, nil, ErrMissingFields
	}

	account, err := s.repo.Accounts(role).ByIdentifier(ctx, userKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Warn("login_failed", "identifier", userKey, "reason", "not_registered")
			return nil, nil, ErrNotRegistered
		}
		return nil, nil, fmt.Errorf("looking up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login_failed", "account_id", account.ID, "reason", "wrong_password")
		return nil, nil, ErrWrongPassword
	}

	// The OR lookup may match the other column, e.g. a phone number that is
	// textually equal to someone else's email. Require the matched field to
	// equal the identifier exactly.
	if strings.Contains(userKey, "@") {
		if account.Email != userKey {
			return nil, nil, ErrEmailMismatch
		}
	} else if account.PhoneNumber != userKey {
		return nil, nil, ErrPhoneMismatch
	}

	pair, err := s.issueLoginTokens(ctx, account.ID, role)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("login_success", "account_id", account.ID, "role", role)
	return account, pair, nil
}

// SetPassword creates or replaces an account's password. No token side
// effects.
func (s *Service) SetPassword(ctx context.Context, role models.AccountType, accountID int64, password, confirmPassword string) error {
	if password != confirmPassword {
		return ErrPasswordMismatch
	}
	if accountID == 0 || password == "" {
		return ErrMissingFields
	}

	if _, err := s.repo.Accounts(role).ByID(ctx, accountID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotRegistered
		}
		return fmt.Errorf("looking up account: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := s.repo.Accounts(role).UpdatePassword(ctx, accountID, string(passwordHash)); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	slog.Info("password_set", "account_id", accountID, "role", role)
	return nil
}

// Refresh rotates a refresh token: it verifies the presented token, requires
// a server-side record for the subject, then deletes every record for that
// subject and inserts exactly one new one. Old tokens are dead after one
// successful rotation even if their signatures are still valid.
func (s *Service) Refresh(ctx context.Context, rawToken string) (*TokenPair, error) {
	if rawToken == "" {
		return nil, ErrNoRefreshToken
	}

	claims, err := s.tokens.VerifyRefresh(rawToken)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.AnyTokenRecord(ctx, claims.Role, claims.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Warn("refresh_rejected", "account_id", claims.ID, "role", claims.Role, "reason", "no_record")
			return nil, ErrTokenNotRecognized
		}
		return nil, fmt.Errorf("looking up token record: %w", err)
	}

	refreshToken, refreshExpiresAt, err := s.tokens.IssueRefresh(claims.ID, claims.Role)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteTokenRecordsForSubject(ctx, claims.Role, claims.ID); err != nil {
		return nil, fmt.Errorf("rotating token records: %w", err)
	}
	record := &models.TokenRecord{
		AccountID:   claims.ID,
		AccountType: claims.Role,
		Token:       refreshToken,
		Purpose:     models.PurposeRenew,
		ExpiresAt:   refreshExpiresAt,
	}
	if err := s.repo.CreateTokenRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("storing rotated token: %w", err)
	}

	accessToken, accessExpiresAt, err := s.tokens.IssueAccess(claims.ID, claims.Role)
	if err != nil {
		return nil, err
	}

	slog.Info("token_rotated", "account_id", claims.ID, "role", claims.Role)
	return &TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

// ForgotPassword issues a short-lived reset token, stores its record and
// emails the reset link. Delivery is best effort; the stored record is the
// source of truth.
func (s *Service) ForgotPassword(ctx context.Context, role models.AccountType, email string) error {
	account, err := s.repo.Accounts(role).ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEmailNotFound
		}
		return fmt.Errorf("looking up account: %w", err)
	}

	resetToken, expiresAt, err := s.tokens.IssueReset(account.ID, role)
	if err != nil {
		return err
	}

	record := &models.TokenRecord{
		AccountID:   account.ID,
		AccountType: role,
		Token:       resetToken,
		Purpose:     models.PurposeForgotPassword,
		ExpiresAt:   expiresAt,
	}
	if err := s.repo.CreateTokenRecord(ctx, record); err != nil {
		return fmt.Errorf("storing reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/auth/reset-password?token=%s", s.frontendURL, resetToken)
	s.mail.Enqueue(mailer.PasswordResetMessage(email, resetURL))

	slog.Info("password_reset_requested", "account_id", account.ID, "role", role)
	return nil
}

// ResetPassword finishes the forgot-password flow. The raw token must decode
// with the reset key, a non-revoked record must exist, the record must still
// be unexpired on the database side, and the raw token must equal the stored
// value exactly. The record is revoked on success, so a reset token works
// once. No state is mutated on any failure.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if rawToken == "" || newPassword == "" {
		return ErrMissingFields
	}

	claims, err := s.tokens.VerifyReset(rawToken)
	if err != nil {
		return err
	}

	record, err := s.repo.LatestActiveTokenRecord(ctx, claims.Role, claims.ID, models.PurposeForgotPassword)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("looking up reset token: %w", err)
	}

	// Defense in depth against clock skew between token and store.
	if time.Now().After(record.ExpiresAt) {
		return token.ErrTokenExpired
	}

	// A token with a valid signature that was never the one stored, e.g. a
	// replay signed with a stolen old key, must not pass.
	if rawToken != record.Token {
		return token.ErrTokenInvalid
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.repo.Accounts(claims.Role).UpdatePassword(ctx, claims.ID, string(passwordHash)); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	if err := s.repo.RevokeTokenRecord(ctx, record.ID); err != nil {
		return fmt.Errorf("revoking reset token: %w", err)
	}

	slog.Info("password_reset_success", "account_id", claims.ID, "role", claims.Role)
	return nil
}

// issueLoginTokens mints an access/refresh pair and upserts the login token
// record: the newest record for (account, "<role> login") is replaced in
// place when present, otherwise one is inserted.
func (s *Service) issueLoginTokens(ctx context.Context, accountID int64, role models.AccountType) (*TokenPair, error) {
	refreshToken, refreshExpiresAt, err := s.tokens.IssueRefresh(accountID, role)
	if err != nil {
		return nil, err
	}

	purpose := role.LoginPurpose()
	existing, err := s.repo.LatestTokenRecord(ctx, role, accountID, purpose)
	switch {
	case err == nil:
		if err := s.repo.ReplaceTokenRecord(ctx, existing.ID, refreshToken, refreshExpiresAt); err != nil {
			return nil, fmt.Errorf("replacing login token: %w", err)
		}
	case errors.Is(err, repository.ErrNotFound):
		record := &models.TokenRecord{
			AccountID:   accountID,
			AccountType: role,
			Token:       refreshToken,
			Purpose:     purpose,
			ExpiresAt:   refreshExpiresAt,
		}
		if err := s.repo.CreateTokenRecord(ctx, record); err != nil {
			return nil, fmt.Errorf("storing login token: %w", err)
		}
	default:
		return nil, fmt.Errorf("looking up login token: %w", err)
	}

	accessToken, accessExpiresAt, err := s.tokens.IssueAccess(accountID, role)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

// generateAccountCode samples S-prefixed six-digit codes until one is free.
func (s *Service) generateAccountCode(ctx context.Context) (string, error) {
	for range accountCodeAttempts {
		code := fmt.Sprintf("S%d", 100000+rand.IntN(900000))
		taken, err := s.repo.AccountCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("checking account code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique account code")
}
