package gmail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bassamadnan/lumimail/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type stubTokens struct {
	mu        sync.Mutex
	token     string
	refreshes int
}

func (s *stubTokens) AccessToken(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *stubTokens) Refresh(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes++
	s.token = "fresh"
	return s.token, nil
}

// fakeGmail serves the two message endpoints and rejects any bearer token
// other than "fresh".
type fakeGmail struct {
	mu    sync.Mutex
	auths []string
}

func (f *fakeGmail) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.auths = append(f.auths, r.Header.Get("Authorization"))
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if r.Header.Get("Authorization") != "Bearer fresh" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":401,"message":"Invalid Credentials"}}`))
		return
	}

	const prefix = "/gmail/v1/users/me/messages"
	switch {
	case r.URL.Path == prefix:
		q := r.URL.Query()
		if q.Get("pageToken") == "" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"messages":           []map[string]string{{"id": "a"}, {"id": "b"}},
				"nextPageToken":      "p2",
				"resultSizeEstimate": 3,
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"messages":           []map[string]string{{"id": "c"}},
			"resultSizeEstimate": 3,
		})
	case strings.HasPrefix(r.URL.Path, prefix+"/"):
		id := strings.TrimPrefix(r.URL.Path, prefix+"/")
		if id == "missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Not Found"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":       id,
			"labelIds": []string{"UNREAD"},
			"payload": map[string]any{
				"mimeType": "text/plain",
				"headers": []map[string]string{
					{"name": "From", "value": "Tester <t@example.com>"},
					{"name": "Subject", "value": "subject " + id},
				},
				"body": map[string]string{"data": b64("body " + id)},
			},
		})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, tokens auth.TokenProvider) (*Client, *fakeGmail) {
	t.Helper()
	fake := &fakeGmail{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), tokens, nil, option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return c, fake
}

func TestListMessagesRefreshesOnUnauthorized(t *testing.T) {
	tokens := &stubTokens{token: "stale"}
	c, fake := newTestClient(t, tokens)

	page, err := c.ListMessages(context.Background(), "in:inbox", 20, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, page.IDs)
	assert.Equal(t, "p2", page.NextPageToken)
	assert.EqualValues(t, 3, page.ResultSizeEstimate)

	assert.Equal(t, 1, tokens.refreshes)
	assert.Equal(t, []string{"Bearer stale", "Bearer fresh"}, fake.auths)

	page, err = c.ListMessages(context.Background(), "in:inbox", 20, "p2")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, page.IDs)
	assert.Empty(t, page.NextPageToken)
	assert.Equal(t, 1, tokens.refreshes)
}

func TestFetchEmail(t *testing.T) {
	c, _ := newTestClient(t, &stubTokens{token: "fresh"})

	e := c.FetchEmail(context.Background(), "m42")
	require.NotNil(t, e)
	assert.Equal(t, "m42", e.ID)
	assert.Equal(t, "subject m42", e.Subject)
	assert.Equal(t, "Tester", e.FromName)
	assert.Equal(t, "body m42", e.BodyText)
	assert.False(t, e.IsRead)

	assert.Nil(t, c.FetchEmail(context.Background(), "missing"))
}

func TestUnauthorizedAfterRefreshIsReported(t *testing.T) {
	tokens := &neverValid{}
	c, _ := newTestClient(t, tokens)

	_, err := c.ListMessages(context.Background(), "", 10, "")
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
	assert.Equal(t, 1, tokens.refreshes)
}

type neverValid struct{ refreshes int }

func (n *neverValid) AccessToken(context.Context) (string, error) { return "bad", nil }

func (n *neverValid) Refresh(context.Context) (string, error) {
	n.refreshes++
	return "still-bad", nil
}
