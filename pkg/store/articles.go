package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/coolbeans/boelex/pkg/extract"
	"github.com/coolbeans/boelex/pkg/identifier"
)

// UpsertArticles inserts or replaces the given articles of a law in one
// batch and returns how many were written. Article numbers are stored in
// canonical form, so "4BIS" and "cuarto bis" land on the same row.
func (s *Store) UpsertArticles(ctx context.Context, lawID uuid.UUID, records []extract.ArticleRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(`
			INSERT INTO articles (law_id, article_number, title, content)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (law_id, article_number) DO UPDATE
			SET title = EXCLUDED.title,
			    content = EXCLUDED.content,
			    updated_at = now()`,
			lawID, identifier.Canonical(record.ArticleNumber), record.Title, record.Content,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range records {
		if _, err := results.Exec(); err != nil {
			return i, fmt.Errorf("failed to upsert article %q: %w", records[i].ArticleNumber, err)
		}
	}
	return len(records), nil
}

// ListArticles returns a law's articles in identifier order ("2" before "10",
// "216" before "216 bis"), which SQL text ordering does not give.
func (s *Store) ListArticles(ctx context.Context, lawID uuid.UUID) ([]extract.ArticleRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT article_number, title, content
		FROM articles
		WHERE law_id = $1`, lawID)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	records := make([]extract.ArticleRecord, 0)
	for rows.Next() {
		var record extract.ArticleRecord
		if err := rows.Scan(&record.ArticleNumber, &record.Title, &record.Content); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	identifier.SortBy(records, func(record extract.ArticleRecord) string {
		return record.ArticleNumber
	})
	return records, nil
}

// StoredArticles returns the articles of the law with boeID.
func (s *Store) StoredArticles(ctx context.Context, boeID string) ([]extract.ArticleRecord, error) {
	lawID, err := s.LawID(ctx, boeID)
	if err != nil {
		return nil, err
	}
	return s.ListArticles(ctx, lawID)
}

// UpdateContent replaces the content of one article.
func (s *Store) UpdateContent(ctx context.Context, lawID uuid.UUID, articleNumber, content string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE articles
		SET content = $3, updated_at = now()
		WHERE law_id = $1 AND article_number = $2`,
		lawID, identifier.Canonical(articleNumber), content,
	)
	if err != nil {
		return fmt.Errorf("failed to update article %q: %w", articleNumber, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrArticleNotFound, articleNumber)
	}
	return nil
}

// DeleteArticles removes the given article numbers of a law and returns how
// many rows went away.
func (s *Store) DeleteArticles(ctx context.Context, lawID uuid.UUID, articleNumbers []string) (int64, error) {
	if len(articleNumbers) == 0 {
		return 0, nil
	}

	canonical := make([]string, len(articleNumbers))
	for i, number := range articleNumbers {
		canonical[i] = identifier.Canonical(number)
	}

	tag, err := s.pool.Exec(ctx, `
		DELETE FROM articles
		WHERE law_id = $1 AND article_number = ANY($2)`,
		lawID, canonical,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete articles: %w", err)
	}
	return tag.RowsAffected(), nil
}
