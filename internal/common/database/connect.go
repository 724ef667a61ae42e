// internal/common/database/connect.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"loan-approval-workers/internal/common/config"
	apperrors "loan-approval-workers/internal/common/errors"

	"github.com/elastic/go-elasticsearch/v8"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Service names used in EXTERNAL_SERVICE_ERROR details.
const (
	ServiceRedis         = "redis"
	ServicePostgres      = "postgres"
	ServiceElasticsearch = "elasticsearch"
)

// ConnectRedis returns a pinged Redis client. Failures are retryable
// external service errors so callers can back off and try again.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     4,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, apperrors.NewExternalServiceError(ServiceRedis, err)
	}
	return rdb, nil
}

// ConnectPostgres opens and pings a small pool; artifacts are read once at
// startup so few connections are needed.
func ConnectPostgres(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	if cfg.Host == "" || cfg.Database == "" {
		return nil, fmt.Errorf("postgres host and database are required")
	}

	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(maxOr(cfg.MaxConnections, 4))
	db.SetMaxIdleConns(maxOr(cfg.MaxIdle, 1))
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, apperrors.NewExternalServiceError(ServicePostgres, err)
	}
	return db, nil
}

// ConnectElasticsearch returns a client whose cluster answered a ping.
func ConnectElasticsearch(ctx context.Context, cfg config.ElasticsearchConfig) (*elasticsearch.Client, error) {
	addresses := cfg.GetAddresses()
	if len(addresses) == 0 {
		return nil, fmt.Errorf("elasticsearch addresses are required")
	}

	esCfg := elasticsearch.Config{Addresses: addresses}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}
	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	res, err := es.Ping(es.Ping.WithContext(ctx))
	if err != nil {
		return nil, apperrors.NewExternalServiceError(ServiceElasticsearch, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, apperrors.NewExternalServiceError(ServiceElasticsearch, fmt.Errorf("ping returned %s", res.Status()))
	}
	return es, nil
}

func maxOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
