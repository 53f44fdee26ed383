// Package cache persists one fetched email list per mailbox section.
//
// A section entry is always replaced as a whole: readers observe either the
// previous list and metadata or the new ones, never a mix.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bassamadnan/lumimail/gmail"
	"github.com/bassamadnan/lumimail/mailbox"
)

// MaxAge bounds how long an entry may sit in a store before it is pruned,
// regardless of freshness.
const MaxAge = 24 * time.Hour

// ErrNotFound is returned by Get when a section has no entry.
var ErrNotFound = errors.New("section not cached")

// Meta describes how and when a section's list was fetched.
type Meta struct {
	Timestamp          time.Time `json:"timestamp"`
	NextPageToken      string    `json:"nextPageToken"`
	TotalEmails        int       `json:"totalEmails"`
	ResultSizeEstimate int64     `json:"resultSizeEstimate"`
	IsComplete         bool      `json:"isComplete"`
}

// SectionCache is the persisted snapshot of one section.
type SectionCache struct {
	Emails []gmail.Email `json:"emails"`
	Meta   Meta          `json:"meta"`
}

// New builds a snapshot fetched at now. The entry is complete exactly when
// no continuation cursor remains.
func New(emails []gmail.Email, nextPageToken string, estimate int64, now time.Time) SectionCache {
	return SectionCache{
		Emails: emails,
		Meta: Meta{
			Timestamp:          now,
			NextPageToken:      nextPageToken,
			ResultSizeEstimate: estimate,
		},
	}.Normalize()
}

// Normalize recomputes the derived metadata fields.
func (c SectionCache) Normalize() SectionCache {
	c.Meta.TotalEmails = len(c.Emails)
	c.Meta.IsComplete = c.Meta.NextPageToken == ""
	return c
}

// Empty reports whether the snapshot holds no emails.
func (c *SectionCache) Empty() bool { return c == nil || len(c.Emails) == 0 }

// Age is the time elapsed since the snapshot was fetched.
func (c *SectionCache) Age(now time.Time) time.Duration {
	return now.Sub(c.Meta.Timestamp)
}

// Clone copies the email slice so the caller can't alias stored data.
func (c SectionCache) Clone() SectionCache {
	c.Emails = append([]gmail.Email(nil), c.Emails...)
	return c
}

// Store holds section snapshots. Implementations must make Put an atomic
// replacement of the whole entry.
type Store interface {
	Get(ctx context.Context, section mailbox.Section) (*SectionCache, error)
	Put(ctx context.Context, section mailbox.Section, entry SectionCache) error
	Delete(ctx context.Context, section mailbox.Section) error
	Clear(ctx context.Context) error
	// Prune drops entries fetched before cutoff and returns how many went.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
	Close() error
}
