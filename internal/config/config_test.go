package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("DB_USER", "tours")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_NAME", "tours")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "3306", cfg.DBPort)
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.Equal(t, 7, cfg.RefreshTTLDays)
	assert.True(t, cfg.DBAutoMigrate)
	assert.False(t, cfg.AMQPEnabled)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("DB_USER", "")
	os.Unsetenv("DB_USER")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	setRequired(t)
	t.Setenv("BCRYPT_COST", "3")
	_, err := Load()
	assert.ErrorContains(t, err, "BCRYPT_COST")

	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "0")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DB_USER=fromfile\nDB_HOST=db\nDB_NAME=tours\nJWT_SECRET=s\nAPP_PORT=9090\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	for _, k := range []string{"DB_USER", "DB_HOST", "DB_NAME", "JWT_SECRET", "APP_PORT"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "fromfile", cfg.DBUser)
	assert.Equal(t, "9090", cfg.Port)
}

func TestRateLimitNormalize(t *testing.T) {
	cfg := RateLimitConfig{Capacity: 0, RefillTokens: 0, RefillInterval: 0, TTL: time.Second, Burst: -1}.normalize()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, time.Second, cfg.RefillInterval)
	assert.Equal(t, 5*time.Second, cfg.TTL)

	cfg = RateLimitConfig{Capacity: 60, Burst: 10, RefillEvery: 2 * time.Second}.normalize()
	assert.Equal(t, 10, cfg.Capacity)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
}

func TestLoadCacheConfigMethods(t *testing.T) {
	t.Setenv("CACHE_METHODS", " get, head ,")
	cfg := LoadCacheConfig()
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
}

func TestRedisAddress(t *testing.T) {
	assert.Equal(t, "localhost:6379", RedisConfig{Addr: "localhost:6379"}.Address())
	assert.Equal(t, "redis:6380", RedisConfig{Host: "redis", Port: "6380", Addr: "x:1"}.Address())
}

func TestLoadConsumer(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("JOURNAL_MAX_SIZE_MB", "0")
	_, err := LoadConsumer()
	assert.Error(t, err)

	t.Setenv("JOURNAL_MAX_SIZE_MB", "10")
	cfg, err := LoadConsumer()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.JournalMaxSizeMB)
}

func TestNewLogger(t *testing.T) {
	log := NewLogger("prod", "debug")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = NewLogger("dev", "nonsense")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
