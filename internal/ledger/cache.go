package ledger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const trailKeyPrefix = "ledger:trail:"

// CachedClient wraps a Client and serves GetAuditTrail from Redis with TTL
// eviction. Only the read path is cached: the ledger trail is corroborating
// evidence, never authoritative, so a slightly stale copy is acceptable.
// Writes pass through and invalidate the cached trail for the consent.
type CachedClient struct {
	Client
	redis    *redis.Client
	cacheTTL time.Duration
}

// NewCachedClient wraps inner with a Redis read-through cache for trails.
func NewCachedClient(inner Client, client *redis.Client, cacheTTL time.Duration) *CachedClient {
	return &CachedClient{
		Client:   inner,
		redis:    client,
		cacheTTL: cacheTTL,
	}
}

// GetAuditTrail serves the cached trail when present, otherwise reads through
// to the ledger and caches the result.
func (c *CachedClient) GetAuditTrail(ctx context.Context, consentID string) ([]Event, error) {
	key := trailKeyPrefix + consentID
	data, err := c.redis.Get(ctx, key).Bytes()
	if err == nil {
		var events []Event
		if err := json.Unmarshal(data, &events); err == nil {
			return events, nil
		}
		// Corrupt entry: fall through to the ledger and overwrite it.
	}
	// A cache miss or a redis outage both degrade to a direct ledger read.

	events, err := c.Client.GetAuditTrail(ctx, consentID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(events); err == nil {
		// Best-effort cache fill; a write failure only costs the next read.
		_ = c.redis.Set(ctx, key, payload, c.cacheTTL).Err()
	}
	return events, nil
}

// RecordConsent passes through and drops the cached trail for the consent.
func (c *CachedClient) RecordConsent(ctx context.Context, record ConsentRecord) (*Receipt, error) {
	receipt, err := c.Client.RecordConsent(ctx, record)
	if err == nil {
		_ = c.redis.Del(ctx, trailKeyPrefix+record.ConsentID).Err()
	}
	return receipt, err
}

// RevokeConsent passes through and drops the cached trail for the consent.
func (c *CachedClient) RevokeConsent(ctx context.Context, consentID, userID, reason string) (*Receipt, error) {
	receipt, err := c.Client.RevokeConsent(ctx, consentID, userID, reason)
	if err == nil {
		_ = c.redis.Del(ctx, trailKeyPrefix+consentID).Err()
	}
	return receipt, err
}
