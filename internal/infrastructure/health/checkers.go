package health

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"

	"github.com/booknest/catalog-service/internal/core/ports"
	infraDB "github.com/booknest/catalog-service/internal/infrastructure/db"
)

// dbHealthChecker wraps the database for health checks.
type dbHealthChecker struct{ db *infraDB.Database }

func (d *dbHealthChecker) Name() string                    { return "database" }
func (d *dbHealthChecker) Check(ctx context.Context) error { return d.db.DB.PingContext(ctx) }

// redisHealthChecker wraps the redis client for health checks.
type redisHealthChecker struct{ client redis.Cmdable }

func (r *redisHealthChecker) Name() string                    { return "redis" }
func (r *redisHealthChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// MaintainedCache is the part of the list cache the health probe looks at.
type MaintainedCache interface {
	Running() bool
}

var errCacheStopped = errors.New("list cache maintenance is not running")

type listCacheHealthChecker struct{ cache MaintainedCache }

func (l *listCacheHealthChecker) Name() string { return "list_cache" }
func (l *listCacheHealthChecker) Check(ctx context.Context) error {
	if !l.cache.Running() {
		return errCacheStopped
	}
	return nil
}

// NewDBHealthChecker creates a health checker for the database.
func NewDBHealthChecker(db *infraDB.Database) ports.HealthChecker { return &dbHealthChecker{db: db} }

// NewRedisHealthChecker creates a health checker for Redis.
func NewRedisHealthChecker(client redis.Cmdable) ports.HealthChecker {
	return &redisHealthChecker{client: client}
}

// NewListCacheHealthChecker reports the list cache unhealthy once it has been closed.
func NewListCacheHealthChecker(cache MaintainedCache) ports.HealthChecker {
	return &listCacheHealthChecker{cache: cache}
}
