// internal/repository/cache/profile_cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ustaad-service/internal/domain/auth"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// ProfileCache holds the flattened Me view per identity so /auth/me and
// request creation skip Postgres.
type ProfileCache struct {
	c   *redis.Client
	ttl time.Duration
}

func NewProfileCache(c *redis.Client, ttl time.Duration) *ProfileCache {
	return &ProfileCache{c: c, ttl: ttl}
}

// Get reports ok=false on a miss.
func (p *ProfileCache) Get(ctx context.Context, identityID int64) (*auth.Me, bool, error) {
	val, err := p.c.Get(ctx, profileKey(identityID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "redis get")
	}

	var me auth.Me
	if err := json.Unmarshal(val, &me); err != nil {
		return nil, false, errors.Wrap(err, "decode cached profile")
	}
	return &me, true, nil
}

func (p *ProfileCache) Set(ctx context.Context, me *auth.Me) error {
	data, err := json.Marshal(me)
	if err != nil {
		return errors.Wrap(err, "encode profile")
	}
	if err := p.c.Set(ctx, profileKey(me.IdentityID), data, p.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

func (p *ProfileCache) Invalidate(ctx context.Context, identityID int64) error {
	if err := p.c.Del(ctx, profileKey(identityID)).Err(); err != nil {
		return errors.Wrap(err, "redis del")
	}
	return nil
}

func profileKey(identityID int64) string {
	return fmt.Sprintf("profile:%d", identityID)
}
