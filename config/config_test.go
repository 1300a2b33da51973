package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		expectError bool
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "All overrides applied",
			env: map[string]string{
				"GITHUB_TOKEN":        "token",
				"GITHUB_USERNAME":     "octocat",
				"GITHUB_API_BASE_URL": "https://ghe.example.com/api/v3/",
				"CACHE_TTL":           "120",
				"CACHE_CHECK_PERIOD":  "30",
				"LOG_LEVEL":           "debug",
				"LOG_FILE":            "/var/log/github-profile-mcp.log",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "token", cfg.Github.Token)
				assert.Equal(t, "octocat", cfg.Github.Username)
				assert.Equal(t, "https://ghe.example.com/api/v3/", cfg.Github.BaseURL)
				assert.Equal(t, 2*time.Minute, cfg.Cache.TTL())
				assert.Equal(t, 30*time.Second, cfg.Cache.CheckPeriod())
				assert.Equal(t, "debug", cfg.Logs.Level)
				assert.Equal(t, "/var/log/github-profile-mcp.log", cfg.Logs.File)
			},
		},
		{
			name: "Defaults kept when env is empty",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 5*time.Minute, cfg.Cache.TTL())
				assert.Equal(t, time.Minute, cfg.Cache.CheckPeriod())
				assert.Equal(t, DefaultCommitFanOutLimit, cfg.Github.CommitFanOutLimit)
			},
		},
		{
			name:        "Invalid ttl",
			env:         map[string]string{"CACHE_TTL": "five"},
			expectError: true,
		},
		{
			name:        "Invalid check period",
			env:         map[string]string{"CACHE_CHECK_PERIOD": "1m"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefault()
			err := applyEnv(cfg, func(key string) string { return tt.env[key] })

			if tt.expectError {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(cfg *Config)
		expectedErr error
		expectError bool
	}{
		{
			name: "Valid configuration",
			mutate: func(cfg *Config) {
				cfg.Github.Token = "token"
				cfg.Github.Username = "octocat"
			},
		},
		{
			name: "Missing token",
			mutate: func(cfg *Config) {
				cfg.Github.Username = "octocat"
			},
			expectedErr: ErrMissingToken,
			expectError: true,
		},
		{
			name: "Missing username",
			mutate: func(cfg *Config) {
				cfg.Github.Token = "token"
			},
			expectedErr: ErrMissingUsername,
			expectError: true,
		},
		{
			name: "Zero ttl",
			mutate: func(cfg *Config) {
				cfg.Github.Token = "token"
				cfg.Github.Username = "octocat"
				cfg.Cache.TTLSeconds = 0
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefault()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !tt.expectError {
				assert.NoError(t, err)
				return
			}

			assert.Error(t, err)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			}
		})
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	keyring.MockInit()
	t.Setenv("GITHUB_TOKEN", "env-token")
	t.Setenv("GITHUB_USERNAME", "octocat")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Github.Token)
	assert.Equal(t, "octocat", cfg.Github.Username)
}

func TestLoadTokenFromKeyring(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set(AppName, "octocat", "keyring-token"))

	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GITHUB_USERNAME", "octocat")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "keyring-token", cfg.Github.Token)
}

func TestLoadMissingCredentials(t *testing.T) {
	keyring.MockInit()
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GITHUB_USERNAME", "nobody")

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingToken)
}
