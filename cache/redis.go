package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// UserLookup is the store being cached.
type UserLookup interface {
	UserExists(ctx context.Context, id string) (bool, error)
}

// UserCache remembers existence lookups for ttl. Only positive answers are
// cached so a newly registered user is seen immediately. Forget drops the
// entry when a user is deleted and leaves a marker for ttl, so a lookup that
// read the store before the delete cannot re-cache the user afterwards.
type UserCache struct {
	client *redis.Client
	next   UserLookup
	ttl    time.Duration
}

func NewUserCache(client *redis.Client, next UserLookup, ttl time.Duration) *UserCache {
	return &UserCache{client: client, next: next, ttl: ttl}
}

func userKey(id string) string {
	return fmt.Sprintf("eshop:user-exists:%s", id)
}

func forgottenKey(id string) string {
	return fmt.Sprintf("eshop:user-forgotten:%s", id)
}

// UserExists falls through to the store when redis misses or fails.
func (u *UserCache) UserExists(ctx context.Context, id string) (bool, error) {
	err := u.client.Get(ctx, userKey(id)).Err()
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, redis.Nil) {
		slog.Warn("user cache read failed", "user_id", id, "error", err)
	}

	exists, err := u.next.UserExists(ctx, id)
	if err != nil || !exists {
		return exists, err
	}

	if err := u.client.Set(ctx, userKey(id), "1", u.ttl).Err(); err != nil {
		slog.Warn("user cache write failed", "user_id", id, "error", err)
		return true, nil
	}

	// Forget sets the marker before deleting the entry, so either it sees
	// the entry written above or this check sees the marker.
	forgotten, err := u.client.Exists(ctx, forgottenKey(id)).Result()
	if err != nil {
		slog.Warn("user cache read failed", "user_id", id, "error", err)
		return true, nil
	}
	if forgotten > 0 {
		if err := u.client.Del(ctx, userKey(id)).Err(); err != nil {
			slog.Warn("user cache delete failed", "user_id", id, "error", err)
		}
		return false, nil
	}
	return true, nil
}

func (u *UserCache) Forget(ctx context.Context, id string) error {
	if err := u.client.Set(ctx, forgottenKey(id), "1", u.ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark user forgotten: %w", err)
	}
	if err := u.client.Del(ctx, userKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete cached user: %w", err)
	}
	return nil
}
