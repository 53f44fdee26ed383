package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassamadnan/lumimail/mailbox"
)

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "credentials.json", cfg.CredentialsFile)
	assert.Equal(t, TokenBackendFile, cfg.TokenBackend)
	assert.Equal(t, CacheBackendSQLite, cfg.CacheBackend)
	assert.Equal(t, 5*time.Minute, cfg.FreshFor)
	assert.Equal(t, 10*time.Minute, cfg.ExpireAfter)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 100*time.Millisecond, cfg.BatchDelay)
	assert.Equal(t, 200*time.Millisecond, cfg.PageDelay)
	assert.Equal(t, 1000, cfg.MetricsCap)
	assert.Equal(t, "lumimail.log", cfg.LogFile)
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LUMIMAIL_CACHE_BACKEND", "redis")
	t.Setenv("LUMIMAIL_REDIS_ADDR", "cache:6380")
	t.Setenv("LUMIMAIL_FRESH_FOR", "1m")
	t.Setenv("LUMIMAIL_METRICS_CAP", "250")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, CacheBackendRedis, cfg.CacheBackend)
	assert.Equal(t, "cache:6380", cfg.RedisAddr)
	assert.Equal(t, time.Minute, cfg.FreshFor)
	assert.Equal(t, 250, cfg.MetricsCap)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LUMIMAIL_LISTEN_ADDR=0.0.0.0:9999\n"), 0600))
	t.Cleanup(func() { os.Unsetenv("LUMIMAIL_LISTEN_ADDR") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9999", cfg.ListenAddr)
}

func TestValidate(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("LUMIMAIL_CACHE_BACKEND", "memcached")
	_, err := Load()
	assert.ErrorContains(t, err, "LUMIMAIL_CACHE_BACKEND")

	t.Setenv("LUMIMAIL_CACHE_BACKEND", "memory")
	t.Setenv("LUMIMAIL_TOKEN_BACKEND", "vault")
	_, err = Load()
	assert.ErrorContains(t, err, "LUMIMAIL_TOKEN_BACKEND")

	t.Setenv("LUMIMAIL_TOKEN_BACKEND", "keyring")
	t.Setenv("LUMIMAIL_FRESH_FOR", "20m")
	_, err = Load()
	assert.ErrorContains(t, err, "LUMIMAIL_EXPIRE_AFTER")
}

func TestManagerRemembersLastSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "preferences.json")

	m, err := NewManager(path)
	require.NoError(t, err)
	assert.Equal(t, mailbox.Inbox, m.LastSection())

	require.NoError(t, m.SetLastSection(mailbox.Starred))
	assert.ErrorIs(t, m.SetLastSection("outbox"), mailbox.ErrUnknownSection)

	reopened, err := NewManager(path)
	require.NoError(t, err)
	assert.Equal(t, mailbox.Starred, reopened.LastSection())
}

func TestManagerIgnoresUnknownStoredSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"lastSection":"outbox"}`), 0644))

	m, err := NewManager(path)
	require.NoError(t, err)
	assert.Equal(t, mailbox.Inbox, m.LastSection())
}
