package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "pitki:pending"

var _ Store = (*RedisStore)(nil)

// RedisStore keeps pending selections in Redis so several bot processes can
// share them. Each entry lives under its own key with a TTL; a per-owner list
// preserves insertion order for TakeFirst.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", addr, "db", db)

	return client, nil
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func entryKey(correlationID string) string {
	return fmt.Sprintf("%s:entry:%s", redisKeyPrefix, correlationID)
}

func ownerKey(ownerID string) string {
	return fmt.Sprintf("%s:owner:%s", redisKeyPrefix, ownerID)
}

func (s *RedisStore) Put(ctx context.Context, sel Selection) error {
	data, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("failed to marshal selection %s: %w", sel.CorrelationID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, entryKey(sel.CorrelationID), data, s.ttl)
	pipe.RPush(ctx, ownerKey(sel.OwnerID), sel.CorrelationID)
	pipe.Expire(ctx, ownerKey(sel.OwnerID), s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store selection %s: %w", sel.CorrelationID, err)
	}
	return nil
}

// Take relies on GETDEL so concurrent takers across processes see the entry
// at most once.
func (s *RedisStore) Take(ctx context.Context, correlationID string) (*Selection, error) {
	sel, err := s.getDel(ctx, correlationID)
	if err != nil {
		return nil, err
	}

	if err := s.client.LRem(ctx, ownerKey(ownerOf(correlationID)), 0, correlationID).Err(); err != nil {
		slog.Warn("Failed to prune pending index", "correlation_id", correlationID, "error", err)
	}

	return sel, nil
}

func (s *RedisStore) TakeFirst(ctx context.Context, ownerID string) (*Selection, error) {
	ids, err := s.client.LRange(ctx, ownerKey(ownerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list pending selections for %s: %w", ownerID, err)
	}

	for _, id := range ids {
		sel, err := s.Take(ctx, id)
		if err != nil {
			return nil, err
		}
		if sel != nil {
			return sel, nil
		}
	}

	return nil, nil
}

func (s *RedisStore) Count(ctx context.Context, ownerID string) (int, error) {
	ids, err := s.client.LRange(ctx, ownerKey(ownerID), 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list pending selections for %s: %w", ownerID, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = entryKey(id)
	}

	n, err := s.client.Exists(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count pending selections for %s: %w", ownerID, err)
	}
	return int(n), nil
}

func (s *RedisStore) getDel(ctx context.Context, correlationID string) (*Selection, error) {
	data, err := s.client.GetDel(ctx, entryKey(correlationID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take selection %s: %w", correlationID, err)
	}

	return decodeSelection(data)
}

func decodeSelection(data []byte) (*Selection, error) {
	var sel Selection
	if err := json.Unmarshal(data, &sel); err != nil {
		return nil, fmt.Errorf("failed to decode selection: %w", err)
	}
	return &sel, nil
}
