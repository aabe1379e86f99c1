package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/company-pulse/internal/types"
)

const articleColumns = `id, company_id, title, body, highlights, source_url, source_name, published_at, fetched_at`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func scanArticle(row pgx.Row) (*types.NewsArticle, error) {
	var (
		a          types.NewsArticle
		highlights []byte
	)
	err := row.Scan(&a.ID, &a.CompanyID, &a.Title, &a.Body, &highlights,
		&a.SourceURL, &a.SourceName, &a.PublishedAt, &a.FetchedAt)
	if err != nil {
		return nil, err
	}
	if len(highlights) > 0 {
		if err := json.Unmarshal(highlights, &a.Highlights); err != nil {
			return nil, fmt.Errorf("failed to decode highlights of article %d: %w", a.ID, err)
		}
	}
	if a.Highlights == nil {
		a.Highlights = []types.Highlight{}
	}
	return &a, nil
}

func encodeHighlights(hs []types.Highlight) ([]byte, error) {
	if hs == nil {
		hs = []types.Highlight{}
	}
	b, err := json.Marshal(hs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal highlights: %w", err)
	}
	return b, nil
}

// GetArticle retrieves an article by id
func (db *DB) GetArticle(ctx context.Context, id int64) (*types.NewsArticle, error) {
	a, err := scanArticle(db.pool.QueryRow(ctx,
		`SELECT `+articleColumns+` FROM news_articles WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return a, nil
}

// GetArticleByURL retrieves an article by its source URL
func (db *DB) GetArticleByURL(ctx context.Context, url string) (*types.NewsArticle, error) {
	a, err := scanArticle(db.pool.QueryRow(ctx,
		`SELECT `+articleColumns+` FROM news_articles WHERE source_url = $1`, url))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get article by url: %w", err)
	}
	return a, nil
}

// listArticlesQuery builds the SELECT for f, newest first.
func listArticlesQuery(f ArticleFilter) (string, []any, error) {
	q := psql.Select(strings.Split(articleColumns, ", ")...).From("news_articles")

	if f.CompanyID > 0 {
		q = q.Where(sq.Eq{"company_id": f.CompanyID})
	}
	if f.SourceName != "" {
		q = q.Where(sq.Eq{"source_name": f.SourceName})
	}
	if !f.Since.IsZero() {
		q = q.Where(sq.GtOrEq{"published_at": f.Since})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where(sq.ILike{"title": "%" + s + "%"})
	}

	q = q.OrderBy("published_at DESC", "id DESC").Limit(uint64(f.limit()))
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return q.ToSql()
}

// ListArticles returns the articles matching f, newest first.
func (db *DB) ListArticles(ctx context.Context, f ArticleFilter) ([]types.NewsArticle, error) {
	query, args, err := listArticlesQuery(f)
	if err != nil {
		return nil, fmt.Errorf("failed to build article query: %w", err)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	var out []types.NewsArticle
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}
	return out, nil
}

// insertArticle inserts a inside tx. It reports false when the URL is already stored.
func insertArticle(ctx context.Context, tx pgx.Tx, a *types.NewsArticle) (bool, error) {
	highlights, err := encodeHighlights(a.Highlights)
	if err != nil {
		return false, err
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO news_articles (id, company_id, title, body, highlights, source_url, source_name, published_at, fetched_at)
		 SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3, $4, $5, $6, $7, $8 FROM news_articles
		 ON CONFLICT (source_url) DO NOTHING
		 RETURNING id`,
		a.CompanyID, a.Title, a.Body, highlights, a.SourceURL, a.SourceName, a.PublishedAt, a.FetchedAt,
	).Scan(&a.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert article %q: %w", a.SourceURL, err)
	}
	if a.Highlights == nil {
		a.Highlights = []types.Highlight{}
	}
	return true, nil
}

// CreateArticle inserts a and fills in its id. An already stored URL returns ErrDuplicate.
func (db *DB) CreateArticle(ctx context.Context, a *types.NewsArticle) error {
	var inserted bool
	err := db.withLockedTable(ctx, "news_articles", func(tx pgx.Tx) error {
		var err error
		inserted, err = insertArticle(ctx, tx, a)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}
	if !inserted {
		return fmt.Errorf("article %q: %w", a.SourceURL, ErrDuplicate)
	}
	return nil
}

// CreateArticles inserts articles in one transaction, skipping URLs that are
// already stored, and returns the inserted records with their ids.
func (db *DB) CreateArticles(ctx context.Context, articles []types.NewsArticle) ([]types.NewsArticle, error) {
	if len(articles) == 0 {
		return nil, nil
	}

	var created []types.NewsArticle
	err := db.withLockedTable(ctx, "news_articles", func(tx pgx.Tx) error {
		for i := range articles {
			a := articles[i]
			ok, err := insertArticle(ctx, tx, &a)
			if err != nil {
				return err
			}
			if ok {
				created = append(created, a)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create articles: %w", err)
	}
	return created, nil
}

// UpdateHighlights replaces the highlight list of an article.
func (db *DB) UpdateHighlights(ctx context.Context, id int64, highlights []types.Highlight) error {
	b, err := encodeHighlights(highlights)
	if err != nil {
		return err
	}
	tag, err := db.pool.Exec(ctx, `UPDATE news_articles SET highlights = $1 WHERE id = $2`, b, id)
	if err != nil {
		return fmt.Errorf("failed to update highlights: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteArticle removes an article and its social content.
func (db *DB) DeleteArticle(ctx context.Context, id int64) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM news_articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	return nil
}
