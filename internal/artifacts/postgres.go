// internal/artifacts/postgres.go
package artifacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PostgresStore keeps artifacts in a table of (name, payload, updated_at).
type PostgresStore struct {
	db    *sql.DB
	table string
}

func NewPostgresStore(db *sql.DB, table string) *PostgresStore {
	return &PostgresStore{db: db, table: pq.QuoteIdentifier(table)}
}

// EnsureSchema creates the artifact table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		name TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`, s.table)
	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *PostgresStore) Load(ctx context.Context, name string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE name = $1`, s.table)

	var payload string
	err := s.db.QueryRowContext(ctx, query, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

func (s *PostgresStore) Put(ctx context.Context, name string, data []byte) error {
	query := fmt.Sprintf(`INSERT INTO %s (name, payload, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()`, s.table)
	_, err := s.db.ExecContext(ctx, query, name, string(data))
	return err
}
