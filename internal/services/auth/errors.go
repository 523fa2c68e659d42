// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

package auth

import (
	"errors"
	"fmt"
)

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrMissingIdentifier  = errors.New("missing email or phone number")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrAlreadyRegistered  = errors.New("account already registered")
	ErrNotRegistered      = errors.New("account not registered")
	ErrWrongPassword      = errors.New("wrong password")
	ErrEmailMismatch      = errors.New("identifier does not match account email")
	ErrPhoneMismatch      = errors.New("identifier does not match account phone number")
	ErrCodeInvalid        = errors.New("invalid or expired code")
	ErrNoRefreshToken     = errors.New("no refresh token")
	ErrTokenNotRecognized = errors.New("refresh token not recognized")
	ErrTokenNotFound      = errors.New("token not found or already used")
	ErrEmailNotFound      = errors.New("email not found")
)

// RateLimitError is returned when a verification code is requested again
// before the resend cooldown elapsed.
type RateLimitError struct {
	WaitMinutes int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("please wait %d more minute(s) before requesting a new code", e.WaitMinutes)
}
