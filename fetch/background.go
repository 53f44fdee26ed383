package fetch

import (
	"context"

	"github.com/bassamadnan/lumimail/mailbox"
)

// Refresh starts a background refetch of section. It returns false without
// doing anything when another background refresh is already running.
func (o *Orchestrator) Refresh(section mailbox.Section) bool {
	return o.refreshInBackground(context.Background(), section)
}

// Wait blocks until every background refresh started so far has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// refreshInBackground runs a sync detached from the caller's cancellation.
// Values carried by parent are kept.
func (o *Orchestrator) refreshInBackground(parent context.Context, section mailbox.Section) bool {
	if !section.Valid() {
		return false
	}
	if !o.background.TryAcquire(1) {
		o.logger.Debug("background refresh already running", "section", section)
		return false
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer o.background.Release(1)

		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), o.opts.RefreshTimeout)
		defer cancel()

		res, err := o.sync(ctx, section)
		if err != nil {
			o.logger.Warn("background refresh failed", "section", section, "error", err)
			return
		}
		o.logger.Debug("background refresh done", "section", section, "emails", len(res.Emails))
	}()
	return true
}
