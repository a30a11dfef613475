package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "session:revoked:"

// Denylist records revoked session token IDs in Redis so every instance
// rejects them. Keys expire with the token.
// Key format: session:revoked:<jti>
type Denylist struct {
	client redis.Cmdable
}

func NewDenylist(client redis.Cmdable) *Denylist {
	return &Denylist{client: client}
}

// Revoke marks id revoked for ttl.
func (d *Denylist) Revoke(ctx context.Context, id string, ttl time.Duration) error {
	if err := d.client.Set(ctx, denylistKey(id), "1", ttl).Err(); err != nil {
		return fmt.Errorf("denylist revoke: %w", err)
	}
	return nil
}

// IsRevoked reports whether id has been revoked and not yet expired.
func (d *Denylist) IsRevoked(ctx context.Context, id string) (bool, error) {
	n, err := d.client.Exists(ctx, denylistKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("denylist check: %w", err)
	}
	return n > 0, nil
}

func denylistKey(id string) string {
	return denylistPrefix + id
}
