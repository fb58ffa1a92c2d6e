package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, defaultPort, cfg.Port)
	require.Equal(t, defaultDBPath, cfg.DatabaseURL)
	require.Equal(t, 24*time.Hour, cfg.JWTTTL)
	require.Empty(t, cfg.CORSOrigins)
}

func TestLoadParsesCORSOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com,")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t,
		[]string{"https://app.example.com", "https://admin.example.com"},
		cfg.CORSOrigins)
}

func TestLoadRejectsInvalidTTL(t *testing.T) {
	t.Setenv("JWT_TTL", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
}
