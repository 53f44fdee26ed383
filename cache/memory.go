package cache

import (
	"context"
	"time"

	"github.com/bassamadnan/lumimail/mailbox"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const memorySize = 64

// MemoryStore keeps snapshots in process. Entries expire MaxAge after
// they were written.
type MemoryStore struct {
	entries *expirable.LRU[mailbox.Section, SectionCache]
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: expirable.NewLRU[mailbox.Section, SectionCache](memorySize, nil, MaxAge),
	}
}

func (m *MemoryStore) Get(_ context.Context, section mailbox.Section) (*SectionCache, error) {
	entry, ok := m.entries.Get(section)
	if !ok {
		return nil, ErrNotFound
	}
	out := entry.Clone()
	return &out, nil
}

func (m *MemoryStore) Put(_ context.Context, section mailbox.Section, entry SectionCache) error {
	m.entries.Add(section, entry.Normalize().Clone())
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, section mailbox.Section) error {
	m.entries.Remove(section)
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.entries.Purge()
	return nil
}

func (m *MemoryStore) Prune(_ context.Context, cutoff time.Time) (int, error) {
	n := 0
	for _, key := range m.entries.Keys() {
		entry, ok := m.entries.Peek(key)
		if ok && entry.Meta.Timestamp.Before(cutoff) {
			m.entries.Remove(key)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Close() error { return nil }
