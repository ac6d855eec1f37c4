package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisSessionPrefix = "schooladmin:session:"

// RedisSessionStore keeps sessions in Redis so several server processes can
// share them. Entries expire after SessionTTL.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore connects to addr and pings it.
func NewRedisSessionStore(ctx context.Context, addr string) (*RedisSessionStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &RedisSessionStore{client: client}, nil
}

// Create stores a new session and returns the token.
func (rs *RedisSessionStore) Create(ctx context.Context, s Session) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	s.CreatedAt = time.Now().UTC()
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	if err := rs.client.Set(ctx, redisSessionPrefix+token, b, SessionTTL).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Get retrieves a session by token. Redis errors are logged and treated as a miss.
func (rs *RedisSessionStore) Get(ctx context.Context, token string) (Session, bool) {
	b, err := rs.client.Get(ctx, redisSessionPrefix+token).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Error("session_lookup_failed", "error", err)
		}
		return Session{}, false
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		slog.Error("session_decode_failed", "error", err)
		return Session{}, false
	}
	return s, true
}

// Delete removes a session by token.
func (rs *RedisSessionStore) Delete(ctx context.Context, token string) error {
	return rs.client.Del(ctx, redisSessionPrefix+token).Err()
}

// Close releases the Redis connection pool.
func (rs *RedisSessionStore) Close() error {
	return rs.client.Close()
}
