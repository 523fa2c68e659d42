// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

package models_test

import (
	"testing"
	"time"

	"github.com/edumesh/schoolhub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccountType(t *testing.T) {
	tests := []struct {
		input    string
		expected models.AccountType
		wantErr  bool
	}{
		{"user", models.AccountUser, false},
		{"school", models.AccountSchool, false},
		{"participant", models.AccountParticipant, false},
		{"admin", "", true},
		{"", "", true},
		{"User", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := models.ParseAccountType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLoginPurpose(t *testing.T) {
	assert.Equal(t, "user login", models.AccountUser.LoginPurpose())
	assert.Equal(t, "school login", models.AccountSchool.LoginPurpose())
	assert.Equal(t, "participant login", models.AccountParticipant.LoginPurpose())
}

func TestTokenRecordActive(t *testing.T) {
	now := time.Now()

	rec := &models.TokenRecord{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, rec.Active(now))

	rec.Revoked = true
	assert.False(t, rec.Active(now))

	rec.Revoked = false
	rec.ExpiresAt = now.Add(-time.Hour)
	assert.False(t, rec.Active(now))
}
