package watermark

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the watermark in a single redis key.
type RedisStore struct {
	rdb     *redis.Client
	account string
}

func NewRedisStore(rdb *redis.Client, account string) *RedisStore {
	return &RedisStore{rdb: rdb, account: account}
}

func watermarkKey(account string) string {
	return fmt.Sprintf("relay:watermark:%s", account)
}

func (s *RedisStore) Read(ctx context.Context) (string, bool, error) {
	id, err := s.rdb.Get(ctx, watermarkKey(s.account)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (s *RedisStore) Write(ctx context.Context, id string) error {
	// No TTL: the cursor stays valid until the next successful delivery.
	return s.rdb.Set(ctx, watermarkKey(s.account), id, 0).Err()
}
