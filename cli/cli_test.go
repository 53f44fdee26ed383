package cli

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassamadnan/lumimail/auth"
	"github.com/bassamadnan/lumimail/cache"
	"github.com/bassamadnan/lumimail/config"
	"github.com/bassamadnan/lumimail/gmail"
	"github.com/bassamadnan/lumimail/mailbox"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestSetupLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l := setupLogger(&buf, "warn", "json")
	l.Info("dropped")
	l.Warn("kept", "section", "inbox")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"msg":"kept"`)
	assert.Contains(t, buf.String(), `"section":"inbox"`)
}

func TestOpenLogFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "lumimail.log")
	f, err := openLogFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.FileExists(t, path)
}

func TestOpenCache(t *testing.T) {
	ctx := context.Background()

	store, err := openCache(ctx, &config.Config{CacheBackend: config.CacheBackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &cache.MemoryStore{}, store)

	store, err = openCache(ctx, &config.Config{
		CacheBackend: config.CacheBackendSQLite,
		CachePath:    filepath.Join(t.TempDir(), "cache.db"),
	})
	require.NoError(t, err)
	assert.IsType(t, &cache.SQLiteStore{}, store)
	assert.NoError(t, store.Close())
}

func TestFetchOptions(t *testing.T) {
	c := &config.Config{
		FreshFor:       time.Minute,
		ExpireAfter:    2 * time.Minute,
		BatchSize:      5,
		BatchDelay:     time.Millisecond,
		PageDelay:      2 * time.Millisecond,
		MetricsCap:     50,
		RefreshTimeout: time.Second,
	}
	opts := fetchOptions(c)
	assert.Equal(t, 5, opts.BatchSize)
	assert.Equal(t, 50, opts.MetricsCap)
	assert.Equal(t, cache.Policy{FreshFor: time.Minute, ExpireAfter: 2 * time.Minute}, cachePolicy(c))
}

func TestFormatError(t *testing.T) {
	assert.Contains(t, FormatError(auth.ErrNoCredentials), "lumimail login")
	assert.Contains(t, FormatError(fmt.Errorf("listing: %w", auth.ErrRefreshFailed)), "again")
	assert.Equal(t, "Request timed out", FormatError(context.DeadlineExceeded))

	_, err := mailbox.Parse("outbox")
	assert.Equal(t, err.Error(), FormatError(err))
	assert.Empty(t, FormatError(nil))
}

func TestEmailLine(t *testing.T) {
	now := time.Now()
	e := gmail.Email{
		Subject:   "Status update",
		FromEmail: "ops@example.com",
		Date:      now,
		Flags:     gmail.FlagsFromLabels([]string{gmail.LabelUnread}),
	}
	line := emailLine(e, now)
	assert.Contains(t, line, "ops@example.com")
	assert.Contains(t, line, "Status update")
	assert.Contains(t, line, now.Local().Format("15:04"))
}
