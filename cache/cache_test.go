package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassamadnan/lumimail/gmail"
	"github.com/bassamadnan/lumimail/mailbox"
)

func newRedisStoreForTest(t *testing.T) *RedisStore {
	t.Helper()
	s := miniredis.RunT(t)
	return NewRedisStore(redis.NewClient(&redis.Options{Addr: s.Addr()}))
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)

	all := map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
		"redis":  newRedisStoreForTest(t),
	}
	t.Cleanup(func() {
		for _, s := range all {
			s.Close()
		}
	})
	return all
}

func emails(ids ...string) []gmail.Email {
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	out := make([]gmail.Email, len(ids))
	for i, id := range ids {
		out[i] = gmail.Email{
			ID:       id,
			Subject:  "subject " + id,
			Date:     base.Add(-time.Duration(i) * time.Hour),
			LabelIDs: []string{gmail.LabelUnread},
			Flags:    gmail.FlagsFromLabels([]string{gmail.LabelUnread}),
		}
	}
	return out
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 30, 0, 0, time.UTC)

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, mailbox.Inbox)
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Put(ctx, mailbox.Inbox, New(emails("a", "b"), "cursor", 40, now)))

			got, err := s.Get(ctx, mailbox.Inbox)
			require.NoError(t, err)
			require.Len(t, got.Emails, 2)
			assert.Equal(t, "a", got.Emails[0].ID)
			assert.Equal(t, "subject b", got.Emails[1].Subject)
			assert.False(t, got.Emails[0].IsRead)
			assert.True(t, got.Meta.Timestamp.Equal(now))
			assert.Equal(t, "cursor", got.Meta.NextPageToken)
			assert.Equal(t, 2, got.Meta.TotalEmails)
			assert.EqualValues(t, 40, got.Meta.ResultSizeEstimate)
			assert.False(t, got.Meta.IsComplete)

			// A later Put replaces the entry as a whole.
			require.NoError(t, s.Put(ctx, mailbox.Inbox, New(emails("c"), "", 1, now.Add(time.Minute))))
			got, err = s.Get(ctx, mailbox.Inbox)
			require.NoError(t, err)
			require.Len(t, got.Emails, 1)
			assert.Equal(t, "c", got.Emails[0].ID)
			assert.Empty(t, got.Meta.NextPageToken)
			assert.True(t, got.Meta.IsComplete)
			assert.Equal(t, 1, got.Meta.TotalEmails)

			require.NoError(t, s.Delete(ctx, mailbox.Inbox))
			_, err = s.Get(ctx, mailbox.Inbox)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreClearAndPrune(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC)

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put(ctx, mailbox.Inbox, New(emails("a"), "", 1, now)))
			require.NoError(t, s.Put(ctx, mailbox.Sent, New(emails("b"), "", 1, now.Add(-25*time.Hour))))
			require.NoError(t, s.Put(ctx, mailbox.Starred, New(emails("c"), "", 1, now.Add(-time.Hour))))

			n, err := s.Prune(ctx, now.Add(-MaxAge))
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			_, err = s.Get(ctx, mailbox.Sent)
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = s.Get(ctx, mailbox.Starred)
			assert.NoError(t, err)

			require.NoError(t, s.Clear(ctx))
			for _, sec := range []mailbox.Section{mailbox.Inbox, mailbox.Sent, mailbox.Starred} {
				_, err := s.Get(ctx, sec)
				assert.ErrorIs(t, err, ErrNotFound, sec)
			}
		})
	}
}

func TestMemoryStoreDoesNotAlias(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	list := emails("a", "b")
	require.NoError(t, s.Put(ctx, mailbox.Inbox, New(list, "", 2, time.Now())))
	list[0].Subject = "changed"

	got, err := s.Get(ctx, mailbox.Inbox)
	require.NoError(t, err)
	assert.Equal(t, "subject a", got.Emails[0].Subject)

	got.Emails[1].Subject = "changed too"
	again, err := s.Get(ctx, mailbox.Inbox)
	require.NoError(t, err)
	assert.Equal(t, "subject b", again.Emails[1].Subject)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, mailbox.All, New(emails("x", "y", "z"), "", 3, time.Now())))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, mailbox.All)
	require.NoError(t, err)
	assert.Len(t, got.Emails, 3)
	assert.True(t, got.Meta.IsComplete)
}

func TestSQLiteStoreCreatesParentDirectory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "nested", "cache.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(ctx, mailbox.Inbox, New(emails("a"), "", 1, time.Now())))
	assert.FileExists(t, path)
}

func TestRedisStoreSetsTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer s.Close()

	require.NoError(t, s.Put(context.Background(), mailbox.Inbox, New(emails("a"), "", 1, time.Now())))
	assert.Equal(t, MaxAge, mr.TTL("lumimail:section:inbox"))

	mr.FastForward(MaxAge + time.Second)
	_, err := s.Get(context.Background(), mailbox.Inbox)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPolicyClassify(t *testing.T) {
	p := DefaultPolicy()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	at := func(age time.Duration) *SectionCache {
		c := New(emails("a"), "", 1, now.Add(-age))
		return &c
	}

	assert.Equal(t, Missing, p.Classify(nil, now))
	empty := New(nil, "", 0, now)
	assert.Equal(t, Missing, p.Classify(&empty, now))

	assert.Equal(t, Fresh, p.Classify(at(0), now))
	assert.Equal(t, Fresh, p.Classify(at(4*time.Minute+59*time.Second), now))
	assert.Equal(t, Stale, p.Classify(at(5*time.Minute), now))
	assert.Equal(t, Stale, p.Classify(at(9*time.Minute+59*time.Second), now))
	assert.Equal(t, Expired, p.Classify(at(10*time.Minute), now))
	assert.Equal(t, Expired, p.Classify(at(3*time.Hour), now))
}

func TestNormalizeCompleteness(t *testing.T) {
	c := SectionCache{
		Emails: emails("a", "b", "c"),
		Meta:   Meta{NextPageToken: "more", IsComplete: true, TotalEmails: 99},
	}.Normalize()
	assert.False(t, c.Meta.IsComplete)
	assert.Equal(t, 3, c.Meta.TotalEmails)

	c.Meta.NextPageToken = ""
	assert.True(t, c.Normalize().Meta.IsComplete)
}
