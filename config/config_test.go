package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/smartsquare")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 8, cfg.PasswordMinLength)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "postgres://u:p@localhost:5432/smartsquare", cfg.DSN())
}

func TestLoadRequiresSecretKey(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/smartsquare")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresDatabase(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_NAME", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestDSNFromParts(t *testing.T) {
	cfg := &Config{
		DatabaseName:     "smartsquare",
		DatabaseUser:     "app",
		DatabasePassword: "pw",
		DatabaseHost:     "db",
		DatabasePort:     5433,
	}
	assert.Equal(t, "host=db port=5433 user=app password=pw dbname=smartsquare sslmode=disable", cfg.DSN())
}
