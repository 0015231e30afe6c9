package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/edugrant/internal/domain/repository"
	"github.com/oksasatya/edugrant/pkg/helpers"
)

// Denylist marks logged-out session ids until the token would have expired.
type Denylist struct {
	rdb *redis.Client
}

func NewDenylist(rdb *redis.Client) *Denylist {
	return &Denylist{rdb: rdb}
}

func (d *Denylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.rdb.Set(ctx, helpers.KeyRevokedSession(tokenID), 1, ttl).Err()
}

func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.rdb.Exists(ctx, helpers.KeyRevokedSession(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

var _ repository.SessionDenylist = (*Denylist)(nil)
