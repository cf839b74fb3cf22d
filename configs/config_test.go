package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lumenops/identity/internal/core/domain/account"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SENDGRID_API_KEY", "SG.test")
	t.Setenv("BASE_URL", "https://id.example.com")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, "postgres", cfg.Identity.TokenStore)
	require.Equal(t, time.Hour, cfg.Identity.SweepInterval)

	policy := cfg.Identity.Policy
	require.Equal(t, account.ScopeGlobal, policy.UniquenessScope)
	require.Equal(t, account.IdentifyByUsername, policy.IdentifierMode)
	require.True(t, policy.ConfirmationRequired)
	require.True(t, policy.RequireVerifiedToLogin)
	require.True(t, policy.UsernameRequired)
	require.Equal(t, 24*time.Hour, policy.TokenTTL)
	require.Equal(t, 10, policy.MaxUsernameAttempts)
	require.False(t, policy.DeliveryMandatory)
	require.False(t, policy.RollbackOnHookError)

	require.Contains(t, cfg.Database.DSN, "dbname=identity_db")
	require.Contains(t, cfg.Database.DSN, "sslmode=disable")
}

func TestLoad_PolicyOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EMAIL_UNIQUENESS_SCOPE", "per_account")
	t.Setenv("IDENTIFIER_MODE", "either")
	t.Setenv("CONFIRMATION_REQUIRED", "false")
	t.Setenv("TOKEN_TTL", "72h")
	t.Setenv("USERNAME_REQUIRED", "false")
	t.Setenv("TOKEN_STORE", "redis")
	t.Setenv("TOKEN_SWEEP_INTERVAL", "15m")

	cfg, err := Load()
	require.NoError(t, err)

	policy := cfg.Identity.Policy
	require.Equal(t, account.ScopePerAccount, policy.UniquenessScope)
	require.Equal(t, account.IdentifyByEither, policy.IdentifierMode)
	require.False(t, policy.ConfirmationRequired)
	require.False(t, policy.UsernameRequired)
	require.Equal(t, 72*time.Hour, policy.TokenTTL)
	require.Equal(t, "redis", cfg.Identity.TokenStore)
	require.Equal(t, 15*time.Minute, cfg.Identity.SweepInterval)
}

func TestLoad_InvalidScopeRejected(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EMAIL_UNIQUENESS_SCOPE", "tenant")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_InvalidTokenStoreRejected(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TOKEN_STORE", "memcached")

	_, err := Load()
	require.Error(t, err)
}
