package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"rentora/internal/checkout"
	"rentora/internal/listing"
)

const (
	checkoutPrefix = "checkout:"
	draftPrefix    = "draft:"
)

// RedisStore is the production session store: records are JSON
// marshalled under a key prefix and carry the session TTL.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient connects and pings, so a bad address fails at boot
// rather than on the first flow.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (s *RedisStore) SaveCheckout(ctx context.Context, session *checkout.Session, ttl time.Duration) error {
	return s.save(ctx, checkoutPrefix+session.ID, session, ttl)
}

func (s *RedisStore) GetCheckout(ctx context.Context, id string) (*checkout.Session, error) {
	var session checkout.Session
	if err := s.get(ctx, checkoutPrefix+id, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *RedisStore) DeleteCheckout(ctx context.Context, id string) error {
	return s.client.Del(ctx, checkoutPrefix+id).Err()
}

func (s *RedisStore) SaveDraft(ctx context.Context, draft *listing.Draft, ttl time.Duration) error {
	return s.save(ctx, draftPrefix+draft.ID, draft, ttl)
}

func (s *RedisStore) GetDraft(ctx context.Context, id string) (*listing.Draft, error) {
	var draft listing.Draft
	if err := s.get(ctx, draftPrefix+id, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (s *RedisStore) DeleteDraft(ctx context.Context, id string) error {
	return s.client.Del(ctx, draftPrefix+id).Err()
}

func (s *RedisStore) save(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) get(ctx context.Context, key string, out any) error {
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}
