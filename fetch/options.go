package fetch

import (
	"time"

	"github.com/bassamadnan/lumimail/cache"
)

// Options tunes the orchestrator. Unset windows, sizes and timeouts fall
// back to DefaultOptions; a zero delay disables pacing.
type Options struct {
	FreshFor    time.Duration
	ExpireAfter time.Duration

	// BatchSize message details are fetched concurrently, then the
	// orchestrator waits BatchDelay before starting the next batch.
	BatchSize  int
	BatchDelay time.Duration

	// PageDelay separates list pages in the metrics aggregation loop.
	PageDelay  time.Duration
	MetricsCap int

	// RefreshTimeout bounds a background refresh.
	RefreshTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		FreshFor:       cache.DefaultFreshFor,
		ExpireAfter:    cache.DefaultExpireAfter,
		BatchSize:      10,
		BatchDelay:     100 * time.Millisecond,
		PageDelay:      200 * time.Millisecond,
		MetricsCap:     1000,
		RefreshTimeout: 2 * time.Minute,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.FreshFor <= 0 {
		o.FreshFor = d.FreshFor
	}
	if o.ExpireAfter <= 0 {
		o.ExpireAfter = d.ExpireAfter
	}
	if o.ExpireAfter < o.FreshFor {
		o.ExpireAfter = o.FreshFor
	}
	if o.BatchSize <= 0 {
		o.BatchSize = d.BatchSize
	}
	if o.BatchDelay < 0 {
		o.BatchDelay = 0
	}
	if o.PageDelay < 0 {
		o.PageDelay = 0
	}
	if o.MetricsCap <= 0 {
		o.MetricsCap = d.MetricsCap
	}
	if o.RefreshTimeout <= 0 {
		o.RefreshTimeout = d.RefreshTimeout
	}
	return o
}

func (o Options) policy() cache.Policy {
	return cache.Policy{FreshFor: o.FreshFor, ExpireAfter: o.ExpireAfter}
}
