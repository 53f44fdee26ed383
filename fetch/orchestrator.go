// Package fetch decides when a section can be served from cache and drives
// paginated, batched retrieval from Gmail when it cannot.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/bassamadnan/lumimail/cache"
	"github.com/bassamadnan/lumimail/gmail"
	"github.com/bassamadnan/lumimail/mailbox"
)

// Provider is the slice of the Gmail client the orchestrator uses.
type Provider interface {
	ListMessages(ctx context.Context, query string, pageSize int64, pageToken string) (*gmail.ListPage, error)
	FetchEmail(ctx context.Context, id string) *gmail.Email
}

// Result is what FetchEmails hands back to a consumer.
type Result struct {
	Emails             []gmail.Email `json:"emails"`
	NextPageToken      string        `json:"nextPageToken,omitempty"`
	ResultSizeEstimate int64         `json:"resultSizeEstimate"`

	// FromCache is set when no network round trip produced Emails.
	FromCache bool `json:"fromCache"`
	// Degraded is set when a refetch failed and a cached snapshot was
	// returned in its place.
	Degraded bool `json:"degraded,omitempty"`
}

// Orchestrator owns the section cache. It is safe for concurrent use.
type Orchestrator struct {
	provider Provider
	store    cache.Store
	opts     Options
	logger   *slog.Logger
	now      func() time.Time

	// flights coalesces concurrent syncs of the same section so a section
	// has at most one writer.
	flights singleflight.Group

	// background admits one background refresh at a time across all
	// sections. A busy refresh of one section delays the others.
	background *semaphore.Weighted
	wg         sync.WaitGroup
}

func New(provider Provider, store cache.Store, logger *slog.Logger, opts Options) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		provider:   provider,
		store:      store,
		opts:       opts.withDefaults(),
		logger:     logger.With("component", "fetch"),
		now:        time.Now,
		background: semaphore.NewWeighted(1),
	}
}

// FetchEmails returns the emails of section. With a pageToken it fetches
// that page directly and leaves the cache alone; otherwise the cached
// snapshot is served, revalidated in the background, or refetched
// depending on its age.
func (o *Orchestrator) FetchEmails(ctx context.Context, section mailbox.Section, pageToken string) (*Result, error) {
	if !section.Valid() {
		return nil, fmt.Errorf("%w: %q", mailbox.ErrUnknownSection, section)
	}
	if pageToken != "" {
		p, err := o.fetchPage(ctx, section, pageToken)
		if err != nil {
			return nil, err
		}
		return p.result(), nil
	}

	if section == mailbox.Metrics {
		return o.fetchMetrics(ctx)
	}

	entry := o.load(ctx, section)
	state := o.opts.policy().Classify(entry, o.now())
	o.logger.Debug("cache lookup", "section", section, "state", state)

	switch state {
	case cache.Fresh:
		return fromCache(entry), nil
	case cache.Stale:
		o.refreshInBackground(ctx, section)
		return fromCache(entry), nil
	}

	res, err := o.sync(ctx, section)
	if err != nil {
		return o.fallback(section, entry, err)
	}
	return res, nil
}

// ClearAllCache drops every section snapshot.
func (o *Orchestrator) ClearAllCache(ctx context.Context) error {
	if err := o.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	o.logger.Info("cache cleared")
	return nil
}

// Reload clears every cached section, then fetches section from Gmail.
func (o *Orchestrator) Reload(ctx context.Context, section mailbox.Section) (*Result, error) {
	if err := o.ClearAllCache(ctx); err != nil {
		return nil, err
	}
	return o.FetchEmails(ctx, section, "")
}

// Cached returns the stored snapshot for section without touching the
// network, or nil.
func (o *Orchestrator) Cached(ctx context.Context, section mailbox.Section) *cache.SectionCache {
	return o.load(ctx, section)
}

// load reads a snapshot. Store failures are logged and read as a miss.
func (o *Orchestrator) load(ctx context.Context, section mailbox.Section) *cache.SectionCache {
	entry, err := o.store.Get(ctx, section)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			o.logger.Warn("cache read failed", "section", section, "error", err)
		}
		return nil
	}
	return entry
}

// sync refetches section and replaces its snapshot. Concurrent callers for
// the same section share one fetch. The shared fetch runs detached from any
// single caller, bounded by RefreshTimeout; a caller that gives up returns
// its own ctx error while the others keep waiting.
func (o *Orchestrator) sync(ctx context.Context, section mailbox.Section) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.wg.Add(1)
	ch := o.flights.DoChan(string(section), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.opts.RefreshTimeout)
		defer cancel()
		if section == mailbox.Metrics {
			return o.aggregateMetrics(fetchCtx)
		}
		return o.syncSection(fetchCtx, section)
	})

	var r singleflight.Result
	select {
	case r = <-ch:
		o.wg.Done()
	case <-ctx.Done():
		go func() {
			<-ch
			o.wg.Done()
		}()
		return nil, ctx.Err()
	}

	if r.Err != nil {
		return nil, r.Err
	}
	if r.Shared {
		o.logger.Debug("joined in-flight fetch", "section", section)
	}
	res := *r.Val.(*Result)
	res.Emails = append([]gmail.Email(nil), res.Emails...)
	return &res, nil
}

func (o *Orchestrator) syncSection(ctx context.Context, section mailbox.Section) (*Result, error) {
	p, err := o.fetchPage(ctx, section, "")
	if err != nil {
		return nil, err
	}
	o.persist(ctx, section, cache.New(p.emails, p.nextPageToken, p.estimate, o.now()))
	return p.result(), nil
}

// persist writes entry and prunes snapshots past cache.MaxAge. A store
// failure costs the next call a refetch, so it is only logged.
func (o *Orchestrator) persist(ctx context.Context, section mailbox.Section, entry cache.SectionCache) {
	if err := o.store.Put(ctx, section, entry); err != nil {
		o.logger.Warn("cache write failed", "section", section, "error", err)
		return
	}
	o.logger.Debug("cache updated", "section", section,
		"emails", entry.Meta.TotalEmails, "complete", entry.Meta.IsComplete)

	if n, err := o.store.Prune(ctx, o.now().Add(-cache.MaxAge)); err != nil {
		o.logger.Warn("cache prune failed", "error", err)
	} else if n > 0 {
		o.logger.Info("pruned old sections", "count", n)
	}
}

// fallback serves a non-empty snapshot in place of a failed refetch.
func (o *Orchestrator) fallback(section mailbox.Section, entry *cache.SectionCache, err error) (*Result, error) {
	if entry.Empty() {
		return nil, err
	}
	o.logger.Warn("refetch failed, serving cached snapshot",
		"section", section, "age", o.now().Sub(entry.Meta.Timestamp).Round(time.Second), "error", err)
	res := fromCache(entry)
	res.Degraded = true
	return res, nil
}

func fromCache(entry *cache.SectionCache) *Result {
	return &Result{
		Emails:             append([]gmail.Email(nil), entry.Emails...),
		NextPageToken:      entry.Meta.NextPageToken,
		ResultSizeEstimate: entry.Meta.ResultSizeEstimate,
		FromCache:          true,
	}
}
