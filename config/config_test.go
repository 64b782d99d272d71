package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("FREEPIK_API_KEY", "fp-key")
	t.Setenv("OPENAI_API_KEY", "oa-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 24*time.Hour, cfg.Redis.ColorTTL)
	assert.Equal(t, "https://api.freepik.com", cfg.Freepik.BaseURL)
	assert.Equal(t, 0.5, cfg.OpenAI.Temperature)
	assert.False(t, cfg.Storage.UseSSL)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("COLOR_CACHE_TTL_HOURS", "2")
	t.Setenv("STORAGE_USE_SSL", "true")
	t.Setenv("FREEPIK_RPS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 2*time.Hour, cfg.Redis.ColorTTL)
	assert.True(t, cfg.Storage.UseSSL)
	assert.Equal(t, 5.0, cfg.Freepik.RequestsPerSec)
}

func TestValidate(t *testing.T) {
	t.Setenv("FREEPIK_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "oa-key")

	_, err := Load()
	assert.EqualError(t, err, "FREEPIK_API_KEY is required")

	t.Setenv("FREEPIK_API_KEY", "fp-key")
	t.Setenv("OPENAI_API_KEY", "")
	_, err = Load()
	assert.EqualError(t, err, "OPENAI_API_KEY is required")
}

func TestValidate_ProductionRequiresFirebase(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("FIREBASE_CREDENTIALS_PATH", "")

	_, err := Load()
	assert.EqualError(t, err, "FIREBASE_CREDENTIALS_PATH is required in production")

	t.Setenv("FIREBASE_CREDENTIALS_PATH", "/etc/iconsmith/firebase.json")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/etc/iconsmith/firebase.json", cfg.Firebase.CredentialsPath)

	t.Setenv("APP_ENV", "development")
	t.Setenv("FIREBASE_CREDENTIALS_PATH", "")
	_, err = Load()
	assert.NoError(t, err)
}

func TestDatabaseURLs(t *testing.T) {
	plain := DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Name: "iconsmith", SSLMode: "disable"}
	assert.Equal(t, "host=localhost port=5432 user=postgres password='' dbname=iconsmith sslmode=disable", plain.DSN())

	d := DatabaseConfig{Host: "db", Port: 5432, User: "icon", Password: "p@ss word", Name: "iconsmith", SSLMode: "disable"}

	assert.Equal(t, "host=db port=5432 user=icon password='p@ss word' dbname=iconsmith sslmode=disable", d.DSN())
	assert.Equal(t, "postgres://icon:p%40ss%20word@db:5432/iconsmith?sslmode=disable", d.URL())
}
