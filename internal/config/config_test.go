package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("TIKTOK_BROWSER", "Firefox")
	t.Setenv("TIKTOK_HEADLESS", "false")
	t.Setenv("TIKTOK_SESSIONS", "3")
	t.Setenv("ARCHIVE_ENABLED", "true")
	t.Setenv("STORAGE_DRIVER", "S3")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "firefox", cfg.TikTok.Browser)
	assert.False(t, cfg.TikTok.Headless)
	assert.Equal(t, 3, cfg.TikTok.NumSessions)
	assert.True(t, cfg.Archive.Enabled)
	assert.Equal(t, "s3", cfg.Archive.StorageDriver)
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "TIKTOK_BROWSER", "TIKTOK_HEADLESS", "TIKTOK_SESSIONS", "TIKTOK_TIMEOUT_SEC", "ARCHIVE_ENABLED"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "chromium", cfg.TikTok.Browser)
	assert.True(t, cfg.TikTok.Headless)
	assert.Equal(t, 1, cfg.TikTok.NumSessions)
	assert.Equal(t, 15, cfg.TikTok.TimeoutSec)
	assert.False(t, cfg.Archive.Enabled)
}

func TestLoadMSTokenFallback(t *testing.T) {
	t.Setenv("MS_TOKEN", "")
	t.Setenv("ms_token", "legacy-token")
	assert.Equal(t, "legacy-token", Load().TikTok.MSToken)

	t.Setenv("MS_TOKEN", "primary-token")
	assert.Equal(t, "primary-token", Load().TikTok.MSToken)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}
