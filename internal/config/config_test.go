package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr)
	assert.Equal(t, "data/taskhub.db", cfg.Database.Path)
	assert.Equal(t, 30, cfg.Auth.TokenTTLMinutes)
	assert.Equal(t, "taskhub", cfg.Auth.Issuer)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("TASKHUB_SERVER_ADDR", "127.0.0.1:9999")
	t.Setenv("TASKHUB_AUTH_JWTSECRET", "s3cret")
	t.Setenv("TASKHUB_AUTH_TOKENTTLMINUTES", "5")
	t.Setenv("FRONTEND_ORIGIN", "http://localhost:3000")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 5, cfg.Auth.TokenTTLMinutes)
	assert.Equal(t, "http://localhost:3000", cfg.CORS.Origin)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := "cors:\n  origin: https://tasks.example.com\nauth:\n  jwtsecret: from-file\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://tasks.example.com", cfg.CORS.Origin)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
}

func TestValidate_RequiresOriginAndSecret(t *testing.T) {
	var cfg Config
	cfg.Auth.TokenTTLMinutes = 30
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cors origin is required")
	assert.Contains(t, err.Error(), "jwt secret is required")

	cfg.CORS.Origin = "http://localhost:3000"
	cfg.Auth.JWTSecret = "x"
	assert.NoError(t, cfg.Validate())
}
