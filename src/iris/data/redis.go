package data

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const markPrefix = "iris:processed:"

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// MarkStore is the idempotency marker for processed messages. MarkOnce is
// the commit point: it is called before any reply work happens, so a crash
// after marking can lose a reply but never duplicate one.
type MarkStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewMarkStore(rdb *redis.Client, ttl time.Duration) *MarkStore {
	return &MarkStore{rdb: rdb, ttl: ttl}
}

// MarkOnce sets the processed marker for a message id. It returns true only
// for the first caller; replays and restarts see false.
func (m *MarkStore) MarkOnce(ctx context.Context, messageID string) (bool, error) {
	return m.rdb.SetNX(ctx, markPrefix+messageID, "1", m.ttl).Result()
}

// Seen reports whether a message id has already been marked.
func (m *MarkStore) Seen(ctx context.Context, messageID string) (bool, error) {
	n, err := m.rdb.Exists(ctx, markPrefix+messageID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
