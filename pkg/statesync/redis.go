package statesync

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "leviathan:session:"

// RedisStore keeps sessions in Redis so every server replica sees the same record
type RedisStore struct {
	client *redis.Client
	// TTL expires a session after the last write, 0 keeps it forever
	TTL time.Duration
}

// NewRedisStore returns a store backed by the client
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		TTL:    ttl,
	}
}

func redisKey(instanceID string) string {
	return redisKeyPrefix + instanceID
}

// Load returns the stored session
func (r *RedisStore) Load(ctx context.Context, instanceID string) (*Session, error) {
	b, err := r.client.Get(ctx, redisKey(instanceID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}

		return nil, err
	}

	return DecodeSession(b)
}

// Save replaces the stored session
func (r *RedisStore) Save(ctx context.Context, session *Session) error {
	b, err := session.Encode()
	if err != nil {
		return err
	}

	return r.client.Set(ctx, redisKey(session.InstanceID), b, r.TTL).Err()
}

// Delete removes the session
func (r *RedisStore) Delete(ctx context.Context, instanceID string) error {
	return r.client.Del(ctx, redisKey(instanceID)).Err()
}
