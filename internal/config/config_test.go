// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

package config_test

import (
	"context"
	"testing"

	"github.com/edumesh/schoolhub/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func runWithArgs(t *testing.T, args ...string) *config.Config {
	t.Helper()
	var cfg *config.Config
	cmd := &cli.Command{
		Flags: config.Flags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg = config.NewFromCLI(cmd)
			return nil
		},
	}
	require.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...)))
	require.NotNil(t, cfg)
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := runWithArgs(t)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "http://localhost:4200", cfg.Server.FrontendURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "./data/schoolhub.db", cfg.Database.DSN)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.True(t, cfg.SMTP.TLS)
	assert.Equal(t, 64, cfg.Mail.QueueSize)
}

func TestFlagOverrides(t *testing.T) {
	cfg := runWithArgs(t,
		"--port", "8080",
		"--env", "production",
		"--database-dsn", ":memory:",
		"--access-secret", "a",
		"--refresh-secret", "r",
		"--reset-secret", "s",
	)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Env)
	assert.Equal(t, ":memory:", cfg.Database.DSN)
	assert.Equal(t, "a", cfg.Auth.AccessSecret)
	assert.Equal(t, "r", cfg.Auth.RefreshSecret)
	assert.Equal(t, "s", cfg.Auth.ResetSecret)
}

func TestIsProduction(t *testing.T) {
	cfg := &config.Config{}
	assert.False(t, cfg.IsProduction())

	cfg.Server.Env = "production"
	assert.True(t, cfg.IsProduction())

	cfg.Server.Env = "development"
	assert.False(t, cfg.IsProduction())
}
