package store

import (
	"context"
	"fmt"

	"roomchat/internal/database"
	"roomchat/pkg/logger"
)

// RedisStore backs the Store interface with Redis lists and sets. RPUSH
// is atomic and total-ordered per key, which is what the coordinator's
// append-then-read-back algorithm relies on.
type RedisStore struct {
	client *database.RedisClient
	logger *logger.Logger
}

func NewRedisStore(client *database.RedisClient, log *logger.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: log,
	}
}

func (s *RedisStore) AppendLog(ctx context.Context, key, line string) (int64, error) {
	pos, err := s.client.GetClient().RPush(ctx, key, line).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to append to %s: %w", key, err)
	}
	return pos, nil
}

func (s *RedisStore) LogRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	lines, err := s.client.GetClient().LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read range of %s: %w", key, err)
	}
	return lines, nil
}

func (s *RedisStore) AddSet(ctx context.Context, key, member string) error {
	if err := s.client.GetClient().SAdd(ctx, key, member).Err(); err != nil {
		return fmt.Errorf("failed to add to set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) RemoveSet(ctx context.Context, key, member string) error {
	if err := s.client.GetClient().SRem(ctx, key, member).Err(); err != nil {
		return fmt.Errorf("failed to remove from set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) SetMembers(ctx context.Context, key string) ([]string, error) {
	members, err := s.client.GetClient().SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read set %s: %w", key, err)
	}
	return members, nil
}
