package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bassamadnan/lumimail/auth"
	"github.com/bassamadnan/lumimail/cache"
	"github.com/bassamadnan/lumimail/config"
	"github.com/bassamadnan/lumimail/fetch"
	"github.com/bassamadnan/lumimail/gmail"
)

const (
	keyringService = "lumimail"
	keyringKey     = "gmail-token"
)

// app is the assembled runtime shared by the commands.
type app struct {
	creds  auth.Store
	tokens *auth.Refresher
	store  cache.Store
	orch   *fetch.Orchestrator
	logger *slog.Logger
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	creds, err := openCredentials(cfg)
	if err != nil {
		return nil, err
	}
	oauthCfg, err := auth.ConfigFromFile(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}
	tokens := auth.NewRefresher(creds, oauthCfg, logger)

	client, err := gmail.NewClient(ctx, tokens, logger)
	if err != nil {
		return nil, fmt.Errorf("creating gmail client: %w", err)
	}

	store, err := openCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &app{
		creds:  creds,
		tokens: tokens,
		store:  store,
		orch:   fetch.New(client, store, logger, fetchOptions(cfg)),
		logger: logger,
	}, nil
}

// close waits for background refreshes so their results reach the cache.
func (a *app) close() {
	a.orch.Wait()
	if err := a.store.Close(); err != nil {
		a.logger.Warn("Closing cache store failed", "error", err)
	}
}

func openCredentials(cfg *config.Config) (auth.Store, error) {
	if cfg.TokenBackend == config.TokenBackendKeyring {
		ring, err := auth.OpenKeyring(keyringService, cfg.KeyringDir)
		if err != nil {
			return nil, err
		}
		return auth.NewKeyringStore(ring, keyringKey), nil
	}
	return auth.NewFileStore(cfg.TokenFile), nil
}

func openCache(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	switch cfg.CacheBackend {
	case config.CacheBackendMemory:
		return cache.NewMemoryStore(), nil
	case config.CacheBackendRedis:
		store, err := cache.DialRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		store, err := cache.NewSQLiteStore(cfg.CachePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

func fetchOptions(cfg *config.Config) fetch.Options {
	return fetch.Options{
		FreshFor:       cfg.FreshFor,
		ExpireAfter:    cfg.ExpireAfter,
		BatchSize:      cfg.BatchSize,
		BatchDelay:     cfg.BatchDelay,
		PageDelay:      cfg.PageDelay,
		MetricsCap:     cfg.MetricsCap,
		RefreshTimeout: cfg.RefreshTimeout,
	}
}

func cachePolicy(cfg *config.Config) cache.Policy {
	return cache.Policy{FreshFor: cfg.FreshFor, ExpireAfter: cfg.ExpireAfter}
}
