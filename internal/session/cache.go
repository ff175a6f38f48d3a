package session

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"wahtabla/admin-gateway/internal/model"
)

// IdentityCache bounds how often identity is refetched for the same access
// token. Entries live for a finite freshness window; staleness past the
// window simply misses and the caller resolves again. A nil redis client
// disables the cache (every Get is a miss).
type IdentityCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdentityCache(client *redis.Client, ttl time.Duration) *IdentityCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &IdentityCache{client: client, ttl: ttl}
}

func (c *IdentityCache) Get(ctx context.Context, accessToken string) (*model.Admin, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, cacheKey(accessToken)).Bytes()
	if err != nil {
		return nil, false
	}
	var admin model.Admin
	if err := json.Unmarshal(raw, &admin); err != nil {
		return nil, false
	}
	return &admin, true
}

func (c *IdentityCache) Put(ctx context.Context, accessToken string, admin model.Admin) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(admin)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, cacheKey(accessToken), raw, c.ttl).Err()
}

func (c *IdentityCache) Invalidate(ctx context.Context, accessToken string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, cacheKey(accessToken)).Err()
}

// The raw bearer token never goes into redis, only its digest.
func cacheKey(accessToken string) string {
	sum := sha256.Sum256([]byte(accessToken))
	return "admin-gateway:identity:" + base64.RawURLEncoding.EncodeToString(sum[:])
}
