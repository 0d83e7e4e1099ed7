package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domain "meetup/internal/domain/session"
)

// KeyPrefix namespaces session keys in Redis.
const KeyPrefix = "meetup:session:"

// RedisStore implements Store with one string key per session and a Redis TTL.
type RedisStore struct {
	rdb redis.Cmdable
	now func() time.Time
}

// NewRedisStore creates a store on an existing client.
func NewRedisStore(rdb redis.Cmdable) *RedisStore {
	return &RedisStore{rdb: rdb, now: time.Now}
}

// DialRedis connects and pings the server.
// PRE: addr is host:port
// POST: Returns a connected client or the ping error
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func (r *RedisStore) ttl(sess domain.Session) time.Duration {
	return sess.ExpiresAt.Sub(r.now())
}

// Create stores the session with a TTL matching its expiry.
func (r *RedisStore) Create(ctx context.Context, sess domain.Session) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	ttl := r.ttl(sess)
	if ttl <= 0 {
		return "", fmt.Errorf("session already expired")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	if err := r.rdb.Set(ctx, KeyPrefix+token, data, ttl).Err(); err != nil {
		return "", fmt.Errorf("redis set session: %w", err)
	}
	return token, nil
}

// Get returns the session or domain.ErrNotFound once Redis has expired it.
func (r *RedisStore) Get(ctx context.Context, token string) (domain.Session, error) {
	data, err := r.rdb.Get(ctx, KeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("redis get session: %w", err)
	}
	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return sess, nil
}

// Update overwrites an existing key, keeping it only while it still exists.
func (r *RedisStore) Update(ctx context.Context, token string, sess domain.Session) error {
	ttl := r.ttl(sess)
	if ttl <= 0 {
		return domain.ErrNotFound
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ok, err := r.rdb.SetXX(ctx, KeyPrefix+token, data, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis update session: %w", err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the key.
func (r *RedisStore) Delete(ctx context.Context, token string) error {
	if err := r.rdb.Del(ctx, KeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}
