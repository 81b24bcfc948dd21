package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type redisEnvelope struct {
	Version int64           `json:"version"`
	Payload json.RawMessage `json:"payload"`
}

// RedisBlobStore stores each collection as a JSON envelope under its key and
// uses WATCH/MULTI for compare-and-swap.
type RedisBlobStore struct {
	client *redis.Client
}

// NewRedisBlobStore constructs a redis-backed store.
func NewRedisBlobStore(client *redis.Client) *RedisBlobStore {
	return &RedisBlobStore{client: client}
}

// Get implements BlobStore.
func (s *RedisBlobStore) Get(ctx context.Context, key string) (Blob, error) {
	env, err := readEnvelope(ctx, s.client, key)
	if err != nil {
		return Blob{}, err
	}
	return Blob{Payload: env.Payload, Version: env.Version}, nil
}

// CompareAndSwap implements BlobStore.
func (s *RedisBlobStore) CompareAndSwap(ctx context.Context, key string, expected int64, payload []byte) error {
	encoded, err := json.Marshal(redisEnvelope{Version: expected + 1, Payload: payload})
	if err != nil {
		return fmt.Errorf("encode envelope %s: %w", key, err)
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readEnvelope(ctx, tx, key)
		if err != nil {
			return err
		}
		if current.Version != expected {
			return ErrVersionConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, string(encoded), 0)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrVersionConflict), errors.Is(err, redis.TxFailedErr):
		return ErrVersionConflict
	default:
		return fmt.Errorf("redis cas %s: %w", key, err)
	}
}

func readEnvelope(ctx context.Context, cmd redis.Cmdable, key string) (redisEnvelope, error) {
	raw, err := cmd.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return redisEnvelope{}, nil
		}
		return redisEnvelope{}, fmt.Errorf("redis get %s: %w", key, err)
	}
	var env redisEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return redisEnvelope{}, fmt.Errorf("decode envelope %s: %w", key, err)
	}
	return env, nil
}
