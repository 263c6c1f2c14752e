package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"trashvision/internal/domain"
)

// Cache stores normalized summaries keyed by image hash, so re-uploads of
// the same photo skip the upstream call.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(addr string, ttl time.Duration) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Cache{rdb: rdb, ttl: ttl}, nil
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}

// Key derives the cache key for an uploaded image.
func (c *Cache) Key(image []byte) string {
	sum := sha256.Sum256(image)
	return "predict:" + hex.EncodeToString(sum[:])
}

func (c *Cache) GetSummary(ctx context.Context, key string) (*domain.Summary, bool, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var summary domain.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, false, err
	}
	return &summary, true, nil
}

func (c *Cache) SetSummary(ctx context.Context, key string, summary domain.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, data, c.ttl).Err()
}
