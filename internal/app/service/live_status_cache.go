package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sifan077/BioLink/internal/app/model"
	"github.com/sifan077/BioLink/internal/infra/prometheus"
	"go.uber.org/zap"
)

const liveCacheKeyPrefix = "live"

// CachedLiveProbe memoizes successful probe results in Redis.
// Cache failures fall through to the wrapped probe; errors are never cached.
type CachedLiveProbe struct {
	next     LiveProbe
	redis    *redis.Client
	platform string
	ttl      time.Duration
	logger   *zap.Logger
}

// NewCachedLiveProbe wraps next. A nil redis client disables caching.
func NewCachedLiveProbe(next LiveProbe, rdb *redis.Client, platform string, ttl time.Duration, logger *zap.Logger) LiveProbe {
	if rdb == nil || ttl <= 0 {
		return next
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedLiveProbe{next: next, redis: rdb, platform: platform, ttl: ttl, logger: logger}
}

func (c *CachedLiveProbe) Check(ctx context.Context, identifier string) (*model.LiveStatus, error) {
	key := liveCacheKeyPrefix + ":" + c.platform + ":" + identifier

	raw, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var status model.LiveStatus
		if jsonErr := json.Unmarshal(raw, &status); jsonErr == nil {
			prometheus.LiveCacheLookups.WithLabelValues(c.platform, "hit").Inc()
			return &status, nil
		}
		c.logger.Warn("discarding undecodable live status cache entry", zap.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("live status cache read failed", zap.String("key", key), zap.Error(err))
	}
	prometheus.LiveCacheLookups.WithLabelValues(c.platform, "miss").Inc()

	status, err := c.next.Check(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(status); err == nil {
		if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("live status cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return status, nil
}
