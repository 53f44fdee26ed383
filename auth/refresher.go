package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// defaultLifetime is assumed when the token endpoint omits expires_in.
const defaultLifetime = time.Hour

// TokenProvider hands out access tokens and can force a refresh.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

// Refresher exchanges the stored refresh token for a new access token and
// writes it back to the Store. Concurrent refreshes share one request.
type Refresher struct {
	store  Store
	config *oauth2.Config
	logger *slog.Logger
	group  singleflight.Group
	now    func() time.Time
}

func NewRefresher(store Store, config *oauth2.Config, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		store:  store,
		config: config,
		logger: logger.With("component", "refresher"),
		now:    time.Now,
	}
}

// AccessToken returns the stored access token, refreshing first when it has
// already expired and a refresh token is available.
func (r *Refresher) AccessToken(ctx context.Context) (string, error) {
	creds, err := r.store.Load()
	if err != nil {
		return "", err
	}
	if !creds.Expired(r.now()) {
		return creds.AccessToken, nil
	}
	if creds.RefreshToken == "" {
		if creds.AccessToken != "" {
			// Let the provider decide; a 401 surfaces as ErrUnauthorized.
			return creds.AccessToken, nil
		}
		return "", ErrNoCredentials
	}
	r.logger.Debug("access token expired, refreshing")
	return r.Refresh(ctx)
}

// Refresh obtains a new access token regardless of the stored expiry.
func (r *Refresher) Refresh(ctx context.Context) (string, error) {
	v, err, shared := r.group.Do("refresh", func() (any, error) {
		return r.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	if shared {
		r.logger.Debug("joined in-flight token refresh")
	}
	return v.(string), nil
}

func (r *Refresher) refresh(ctx context.Context) (string, error) {
	creds, err := r.store.Load()
	if err != nil {
		return "", err
	}
	if creds.RefreshToken == "" {
		return "", fmt.Errorf("%w: missing refresh token", ErrNoCredentials)
	}

	src := r.config.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		r.logger.Warn("token refresh failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	expiresIn := defaultLifetime
	if !tok.Expiry.IsZero() {
		expiresIn = tok.Expiry.Sub(r.now())
	}
	if tok.RefreshToken != "" && tok.RefreshToken != creds.RefreshToken {
		creds.RefreshToken = tok.RefreshToken
		if err := r.store.Save(creds); err != nil {
			return "", err
		}
	}
	if err := r.store.SetAccessToken(tok.AccessToken, expiresIn); err != nil {
		return "", err
	}
	r.logger.Info("access token refreshed", "expires_in", expiresIn.Round(time.Second))
	return tok.AccessToken, nil
}

// Do runs call with a current access token. If the provider rejects it with
// ErrUnauthorized, the token is refreshed once and call is retried once; a
// second failure is returned as is.
func Do[T any](ctx context.Context, tokens TokenProvider, call func(ctx context.Context, token string) (T, error)) (T, error) {
	var zero T

	token, err := tokens.AccessToken(ctx)
	if err != nil {
		return zero, err
	}
	v, err := call(ctx, token)
	if err == nil || !errors.Is(err, ErrUnauthorized) {
		return v, err
	}

	token, err = tokens.Refresh(ctx)
	if err != nil {
		return zero, err
	}
	return call(ctx, token)
}
