package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AdamRogowski/LanguageLearningApp/internal/apperr"
)

// RedisStore keeps practice session state in Redis with a TTL, so abandoned
// sessions expire on their own. Swap runs under WATCH so two tabs racing on
// the same session cannot both commit from the same prior state.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// RedisConfig holds connection settings for the session store
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisStore creates a Redis-backed session store
func NewRedisStore(cfg RedisConfig) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisStore{rdb: rdb, ttl: cfg.TTL}
}

func (s *RedisStore) Get(ctx context.Context, key Key) (*State, error) {
	val, err := s.rdb.Get(ctx, key.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session state: %w", err)
	}

	state := &State{}
	if err := json.Unmarshal([]byte(val), state); err != nil {
		return nil, fmt.Errorf("decode session state: %w", err)
	}
	return state, nil
}

func (s *RedisStore) Replace(ctx context.Context, key Key, state *State) error {
	next := *state
	next.Version = 1

	payload, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}

	if err := s.rdb.Set(ctx, key.String(), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store session state: %w", err)
	}
	return nil
}

func (s *RedisStore) Swap(ctx context.Context, key Key, state *State, fromVersion int64) error {
	k := key.String()

	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		var current int64
		val, err := tx.Get(ctx, k).Result()
		switch {
		case errors.Is(err, redis.Nil):
			current = 0
		case err != nil:
			return fmt.Errorf("get session state: %w", err)
		default:
			stored := &State{}
			if err := json.Unmarshal([]byte(val), stored); err != nil {
				return fmt.Errorf("decode session state: %w", err)
			}
			current = stored.Version
		}

		if current != fromVersion {
			return apperr.ErrStaleSession
		}

		next := *state
		next.Version = fromVersion + 1
		payload, err := json.Marshal(&next)
		if err != nil {
			return fmt.Errorf("encode session state: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, payload, s.ttl)
			return nil
		})
		return err
	}, k)

	if errors.Is(err, redis.TxFailedErr) {
		// Another writer slipped in between the read and the commit
		return apperr.ErrStaleSession
	}
	return err
}

func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	if err := s.rdb.Del(ctx, key.String()).Err(); err != nil {
		return fmt.Errorf("delete session state: %w", err)
	}
	return nil
}

// Close releases the underlying Redis client
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
