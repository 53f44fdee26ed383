package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bassamadnan/lumimail/mailbox"
)

const (
	keySection  = "lumimail:section:%s"
	keySections = "lumimail:sections"
)

// RedisStore keeps snapshots in Redis so several processes can share them.
// Keys carry a MaxAge TTL.
type RedisStore struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps an existing client.
func NewRedisStore(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: MaxAge}
}

// DialRedis connects to a single Redis node and checks it responds.
func DialRedis(ctx context.Context, addr string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return NewRedisStore(rdb), nil
}

func (r *RedisStore) key(section mailbox.Section) string {
	return fmt.Sprintf(keySection, section)
}

func (r *RedisStore) Get(ctx context.Context, section mailbox.Section) (*SectionCache, error) {
	data, err := r.rdb.Get(ctx, r.key(section)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting section %s: %w", section, err)
	}

	var entry SectionCache
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshaling section %s: %w", section, err)
	}
	return &entry, nil
}

// Put writes the whole entry in one MULTI/EXEC block.
func (r *RedisStore) Put(ctx context.Context, section mailbox.Section, entry SectionCache) error {
	data, err := json.Marshal(entry.Normalize())
	if err != nil {
		return fmt.Errorf("marshaling section %s: %w", section, err)
	}

	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, r.key(section), data, r.ttl)
	pipe.ZAdd(ctx, keySections, redis.Z{
		Score:  float64(entry.Meta.Timestamp.UnixMilli()),
		Member: string(section),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("storing section %s: %w", section, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, section mailbox.Section) error {
	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, r.key(section))
	pipe.ZRem(ctx, keySections, string(section))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("deleting section %s: %w", section, err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	members, err := r.rdb.ZRange(ctx, keySections, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("listing sections: %w", err)
	}

	keys := []string{keySections}
	for _, m := range members {
		keys = append(keys, r.key(mailbox.Section(m)))
	}
	// Sections written by an older process may be missing from the index.
	for _, s := range mailbox.Sections {
		keys = append(keys, r.key(s))
	}
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("clearing sections: %w", err)
	}
	return nil
}

func (r *RedisStore) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	upper := fmt.Sprintf("(%d", cutoff.UnixMilli())
	members, err := r.rdb.ZRangeByScore(ctx, keySections, &redis.ZRangeBy{Min: "-inf", Max: upper}).Result()
	if err != nil {
		return 0, fmt.Errorf("listing old sections: %w", err)
	}
	if len(members) == 0 {
		return 0, nil
	}

	pipe := r.rdb.TxPipeline()
	for _, m := range members {
		pipe.Del(ctx, r.key(mailbox.Section(m)))
		pipe.ZRem(ctx, keySections, m)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("pruning sections: %w", err)
	}
	return len(members), nil
}

func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
