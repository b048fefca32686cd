package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist remembers signed-out access tokens until they would have expired anyway.
type Denylist interface {
	Deny(ctx context.Context, tokenID string, ttl time.Duration) error
	Denied(ctx context.Context, tokenID string) (bool, error)
}

// RedisDenylist keeps denied token ids as expiring Redis keys.
type RedisDenylist struct {
	client *redis.Client
}

// NewRedisDenylist creates a denylist on client.
func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client}
}

func deniedKey(tokenID string) string { return "auth:denied:" + tokenID }

// Deny stores tokenID for ttl. Non-positive ttls are skipped since the token is dead.
func (d *RedisDenylist) Deny(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, deniedKey(tokenID), 1, ttl).Err()
}

// Denied reports whether tokenID was signed out.
func (d *RedisDenylist) Denied(ctx context.Context, tokenID string) (bool, error) {
	err := d.client.Get(ctx, deniedKey(tokenID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type noDenylist struct{}

func (noDenylist) Deny(context.Context, string, time.Duration) error { return nil }
func (noDenylist) Denied(context.Context, string) (bool, error)      { return false, nil }
