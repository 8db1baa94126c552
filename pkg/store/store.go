// Package store persists laws and their extracted articles in PostgreSQL.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrLawNotFound is returned when no law has the requested BOE identifier.
	ErrLawNotFound = errors.New("law not found")

	// ErrArticleNotFound is returned when an update matches no article.
	ErrArticleNotFound = errors.New("article not found")
)

// Law is a stored law row.
type Law struct {
	ID              uuid.UUID  `json:"id"`
	BOEID           string     `json:"boe_id"`
	Title           string     `json:"title"`
	LastSnapshotKey string     `json:"last_snapshot_key,omitempty"`
	LastFetchedAt   *time.Time `json:"last_fetched_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Store wraps a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Open connects to connString and verifies the connection.
func Open(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Initialize creates the tables if they do not exist.
func (s *Store) Initialize(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS laws (
			id UUID PRIMARY KEY,
			boe_id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL DEFAULT '',
			last_snapshot_key TEXT NOT NULL DEFAULT '',
			last_fetched_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create laws table: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS articles (
			law_id UUID NOT NULL REFERENCES laws(id) ON DELETE CASCADE,
			article_number TEXT NOT NULL,
			title TEXT,
			content TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (law_id, article_number)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create articles table: %w", err)
	}

	return nil
}

// EnsureLaw returns the id of the law with boeID, creating it if needed. A
// non-empty title replaces the stored one.
func (s *Store) EnsureLaw(ctx context.Context, boeID, title string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `
		INSERT INTO laws (id, boe_id, title)
		VALUES ($1, $2, $3)
		ON CONFLICT (boe_id) DO UPDATE
		SET title = COALESCE(NULLIF(EXCLUDED.title, ''), laws.title),
		    updated_at = now()
		RETURNING id`,
		uuid.New(), boeID, title,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to ensure law %s: %w", boeID, err)
	}
	return id, nil
}

// LawID looks up the id of a law by its BOE identifier.
func (s *Store) LawID(ctx context.Context, boeID string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `SELECT id FROM laws WHERE boe_id = $1`, boeID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrLawNotFound, boeID)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up law %s: %w", boeID, err)
	}
	return id, nil
}

// GetLaw returns the stored law row.
func (s *Store) GetLaw(ctx context.Context, boeID string) (*Law, error) {
	law := &Law{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, boe_id, title, last_snapshot_key, last_fetched_at, created_at, updated_at
		FROM laws
		WHERE boe_id = $1`, boeID,
	).Scan(
		&law.ID,
		&law.BOEID,
		&law.Title,
		&law.LastSnapshotKey,
		&law.LastFetchedAt,
		&law.CreatedAt,
		&law.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrLawNotFound, boeID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get law %s: %w", boeID, err)
	}
	return law, nil
}

// RecordSnapshot stores the archive key of the page the law was last synced from.
func (s *Store) RecordSnapshot(ctx context.Context, lawID uuid.UUID, key string, fetchedAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE laws
		SET last_snapshot_key = $2, last_fetched_at = $3, updated_at = now()
		WHERE id = $1`,
		lawID, key, fetchedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrLawNotFound, lawID)
	}
	return nil
}
