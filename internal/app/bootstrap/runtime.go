package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/prisoner-profile/internal/compliance"
	appconfig "github.com/wolfman30/prisoner-profile/internal/config"
	"github.com/wolfman30/prisoner-profile/internal/movementslip"
	"github.com/wolfman30/prisoner-profile/internal/statestore"
	"github.com/wolfman30/prisoner-profile/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildStateStore keeps drafts, flash messages and cached reference data in
// Redis when available, otherwise in process memory.
func BuildStateStore(redisClient *redis.Client, logger *logging.Logger) statestore.Store {
	if redisClient == nil {
		if logger != nil {
			logger.Warn("redis disabled; using in-memory state store")
		}
		return statestore.NewMemoryStore()
	}
	return statestore.NewRedisStore(redisClient)
}

// BuildPostgresPool connects to DATABASE_URL, returning nil when unset.
func BuildPostgresPool(ctx context.Context, cfg *appconfig.Config) (*pgxpool.Pool, error) {
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
	}
	return pool, nil
}

// BuildSlipStore uses Postgres when a pool is available. The in-memory store
// only suits a single instance.
func BuildSlipStore(pool *pgxpool.Pool, logger *logging.Logger) movementslip.Store {
	if pool == nil {
		if logger != nil {
			logger.Warn("database disabled; movement slips held in memory")
		}
		return movementslip.NewMemoryStore()
	}
	return movementslip.NewPostgresStore(pool)
}

// BuildAuditService shares the pool with the audit service through the pgx
// database/sql adapter. Without a pool auditing is disabled.
func BuildAuditService(pool *pgxpool.Pool) (*compliance.AuditService, *sql.DB) {
	if pool == nil {
		return compliance.NewAuditService(nil), nil
	}
	db := stdlib.OpenDBFromPool(pool)
	return compliance.NewAuditService(db), db
}
