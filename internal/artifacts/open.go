// internal/artifacts/open.go
package artifacts

import (
	"context"
	"fmt"
	"io"

	"loan-approval-workers/internal/common/config"
	"loan-approval-workers/internal/common/database"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the store selected by cfg.Artifacts.Backend. The returned
// closer releases the underlying connection.
func Open(ctx context.Context, cfg *config.Config) (ReadWriter, io.Closer, error) {
	return OpenBackend(ctx, cfg, cfg.Artifacts.Backend)
}

// OpenBackend is Open with an explicit backend, used when publishing to a
// store other than the configured one.
func OpenBackend(ctx context.Context, cfg *config.Config, backend string) (ReadWriter, io.Closer, error) {
	ac := cfg.Artifacts
	switch backend {
	case "", config.BackendFile:
		return NewFileStore(ac.Dir), nopCloser{}, nil

	case config.BackendRedis:
		client, err := database.ConnectRedis(ctx, cfg.Database.Redis)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisStore(client, ac.KeyPrefix), client, nil

	case config.BackendPostgres:
		db, err := database.ConnectPostgres(ctx, cfg.Database.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgresStore(db, ac.Table), db, nil

	case config.BackendElasticsearch:
		client, err := database.ConnectElasticsearch(ctx, cfg.Database.Elasticsearch)
		if err != nil {
			return nil, nil, err
		}
		return NewElasticsearchStore(client, ac.Index), nopCloser{}, nil

	default:
		return nil, nil, fmt.Errorf("unknown artifact backend %q", backend)
	}
}
