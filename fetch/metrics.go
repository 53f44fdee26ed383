package fetch

import (
	"context"

	"github.com/bassamadnan/lumimail/cache"
	"github.com/bassamadnan/lumimail/gmail"
	"github.com/bassamadnan/lumimail/mailbox"
)

// fetchMetrics serves the metrics corpus. A usable snapshot follows the same
// fresh/stale rules as other sections; anything else is re-aggregated.
func (o *Orchestrator) fetchMetrics(ctx context.Context) (*Result, error) {
	entry := o.load(ctx, mailbox.Metrics)

	if o.saturated(entry) {
		switch o.opts.policy().Classify(entry, o.now()) {
		case cache.Fresh:
			return fromCache(entry), nil
		case cache.Stale:
			o.refreshInBackground(ctx, mailbox.Metrics)
			return fromCache(entry), nil
		}
	}

	res, err := o.sync(ctx, mailbox.Metrics)
	if err != nil {
		return o.fallback(mailbox.Metrics, entry, err)
	}
	return res, nil
}

// saturated reports whether a metrics snapshot is worth serving: either
// the corpus was exhausted or the aggregation hit MetricsCap. Capped
// snapshots count even though IsComplete stays false, since a mailbox larger
// than MetricsCap would otherwise re-aggregate on every call. A snapshot cut
// short by an empty page is neither.
func (o *Orchestrator) saturated(entry *cache.SectionCache) bool {
	if entry.Empty() {
		return false
	}
	return entry.Meta.IsComplete || len(entry.Emails) >= o.opts.MetricsCap
}

// aggregateMetrics walks list pages until no cursor remains, MetricsCap
// emails have been collected, or a page comes back empty. The snapshot is
// complete only when no cursor remains. A failed page abandons the partial
// corpus.
func (o *Orchestrator) aggregateMetrics(ctx context.Context) (*Result, error) {
	var (
		all      []gmail.Email
		seen     = make(map[string]struct{})
		cursor   string
		estimate int64
		pages    int
	)

	for {
		if pages > 0 {
			if err := pause(ctx, o.opts.PageDelay); err != nil {
				return nil, err
			}
		}
		p, err := o.fetchPage(ctx, mailbox.Metrics, cursor)
		if err != nil {
			return nil, err
		}
		pages++
		cursor = p.nextPageToken
		estimate = p.estimate

		for _, e := range p.emails {
			if _, dup := seen[e.ID]; dup {
				continue
			}
			seen[e.ID] = struct{}{}
			all = append(all, e)
		}

		if cursor == "" || p.listed == 0 || len(all) >= o.opts.MetricsCap {
			break
		}
	}

	SortNewestFirst(all)
	entry := cache.New(all, cursor, estimate, o.now())
	o.logger.Info("metrics aggregated", "pages", pages, "emails", len(all),
		"complete", entry.Meta.IsComplete)
	o.persist(ctx, mailbox.Metrics, entry)

	return &Result{
		Emails:             all,
		NextPageToken:      cursor,
		ResultSizeEstimate: estimate,
	}, nil
}
