package artifacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/opensource-finance/shrike/internal/domain"
)

// SQLStore implements domain.ArtifactStore using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLStore struct {
	db     *sql.DB
	driver string
}

func newSQLStore(cfg domain.ArtifactStoreConfig) (*SQLStore, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLStore{db: db, driver: cfg.Driver}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

func (s *SQLStore) migrate() error {
	if _, err := s.db.Exec(schemaArtifacts); err != nil {
		return err
	}
	return nil
}

// Put stores an artifact, replacing any prior version at the same key in a
// single statement so readers never observe a half-written row.
func (s *SQLStore) Put(ctx context.Context, artifact *domain.Artifact) error {
	if artifact == nil || artifact.Key == "" {
		return fmt.Errorf("%w: artifact key is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO artifacts (key, kind, payload, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			kind = excluded.kind,
			payload = excluded.payload,
			created_at = excluded.created_at
	`

	_, err := s.db.ExecContext(ctx, s.rebind(query),
		artifact.Key, artifact.Kind, artifact.Payload, artifact.CreatedAt,
	)
	return err
}

// Get retrieves an artifact by logical key.
func (s *SQLStore) Get(ctx context.Context, key string) (*domain.Artifact, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: key is required", ErrInvalidInput)
	}

	query := `
		SELECT key, kind, payload, created_at
		FROM artifacts
		WHERE key = ?
	`

	var artifact domain.Artifact
	err := s.db.QueryRowContext(ctx, s.rebind(query), key).Scan(
		&artifact.Key, &artifact.Kind, &artifact.Payload, &artifact.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &artifact, nil
}

// List returns all stored logical keys, sorted.
func (s *SQLStore) List(ctx context.Context) ([]string, error) {
	query := `SELECT key FROM artifacts ORDER BY key`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Ping checks database connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}

	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
