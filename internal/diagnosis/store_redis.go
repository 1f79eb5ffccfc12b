package diagnosis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps records as JSON blobs with a TTL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Save writes rec under diagnosis:<session>:<id>.
func (s *RedisStore) Save(ctx context.Context, rec Record, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, storeKey(rec.SessionID, rec.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis save diagnosis: %w", err)
	}
	return nil
}

// Get reads a record; a missing key is ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, sessionID, id string) (Record, error) {
	data, err := s.client.Get(ctx, storeKey(sessionID, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("redis get diagnosis: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode diagnosis: %w", err)
	}
	return rec, nil
}

var _ Store = (*RedisStore)(nil)
