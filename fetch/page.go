package fetch

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bassamadnan/lumimail/gmail"
	"github.com/bassamadnan/lumimail/mailbox"
)

type page struct {
	emails        []gmail.Email
	nextPageToken string
	estimate      int64
	listed        int
}

func (p *page) result() *Result {
	return &Result{
		Emails:             p.emails,
		NextPageToken:      p.nextPageToken,
		ResultSizeEstimate: p.estimate,
	}
}

// fetchPage lists one page of IDs for section and fetches their details.
// The returned emails are sorted newest first.
func (o *Orchestrator) fetchPage(ctx context.Context, section mailbox.Section, pageToken string) (*page, error) {
	list, err := o.provider.ListMessages(ctx, section.Query(), section.PageSize(), pageToken)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", section, err)
	}

	emails, err := o.fetchDetails(ctx, list.IDs)
	if err != nil {
		return nil, fmt.Errorf("fetching %s details: %w", section, err)
	}
	if dropped := len(list.IDs) - len(emails); dropped > 0 {
		o.logger.Warn("dropped messages that failed to load", "section", section, "dropped", dropped)
	}
	SortNewestFirst(emails)

	return &page{
		emails:        emails,
		nextPageToken: list.NextPageToken,
		estimate:      list.ResultSizeEstimate,
		listed:        len(list.IDs),
	}, nil
}

// fetchDetails loads ids in batches of BatchSize, pausing BatchDelay between
// batches. Messages that fail to load are left out.
func (o *Orchestrator) fetchDetails(ctx context.Context, ids []string) ([]gmail.Email, error) {
	found := make([]*gmail.Email, len(ids))
	for start := 0; start < len(ids); start += o.opts.BatchSize {
		if start > 0 {
			if err := pause(ctx, o.opts.BatchDelay); err != nil {
				return nil, err
			}
		}
		end := min(start+o.opts.BatchSize, len(ids))

		var g errgroup.Group
		g.SetLimit(o.opts.BatchSize)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				found[i] = o.provider.FetchEmail(ctx, ids[i])
				return nil
			})
		}
		_ = g.Wait()

		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	emails := make([]gmail.Email, 0, len(ids))
	for _, e := range found {
		if e != nil {
			emails = append(emails, *e)
		}
	}
	return emails, nil
}

// SortNewestFirst orders emails by date descending. Equal dates are ordered
// by ID so results are deterministic.
func SortNewestFirst(emails []gmail.Email) {
	slices.SortStableFunc(emails, func(a, b gmail.Email) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// pause waits d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
