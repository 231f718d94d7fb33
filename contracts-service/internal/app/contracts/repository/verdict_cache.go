package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gamarriando/contracts-service/internal/app/contracts/entity"
	"gamarriando/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const verdictKeyPrefix = "contracts:verdict"

type verdictCache struct {
	client  *redis.Client
	ttl     time.Duration
	service string
}

func NewVerdictCache(client *redis.Client, ttl time.Duration, service string) VerdictCache {
	return &verdictCache{client: client, ttl: ttl, service: service}
}

// VerdictKey - ключ вердикта: схема и отпечаток тела
func VerdictKey(schemaName, fingerprint string) string {
	return fmt.Sprintf("%s:%s:%s", verdictKeyPrefix, schemaName, fingerprint)
}

func (c *verdictCache) Get(ctx context.Context, schemaName, fingerprint string) (*entity.Verdict, error) {
	timer := metrics.NewRedisTimer(c.service, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	data, err := c.client.Get(ctx, VerdictKey(schemaName, fingerprint)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(c.service, verdictKeyPrefix)
			return nil, ErrCacheMiss
		}
		metrics.RecordRedisError(c.service, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get verdict from redis: %w", err)
	}

	var verdict entity.Verdict
	if err := json.Unmarshal(data, &verdict); err != nil {
		return nil, fmt.Errorf("failed to unmarshal verdict: %w", err)
	}
	verdict.Cached = true

	metrics.RecordCacheHit(c.service, verdictKeyPrefix)
	return &verdict, nil
}

func (c *verdictCache) Set(ctx context.Context, verdict *entity.Verdict) error {
	timer := metrics.NewRedisTimer(c.service, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	data, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("failed to marshal verdict: %w", err)
	}

	if err := c.client.Set(ctx, VerdictKey(verdict.Schema, verdict.Fingerprint), data, c.ttl).Err(); err != nil {
		metrics.RecordRedisError(c.service, metrics.RedisOpSet)
		return fmt.Errorf("failed to set verdict in redis: %w", err)
	}

	return nil
}

func (c *verdictCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
