// Package db provides PostgreSQL storage for companies, news articles and
// generated social content, plus an in-memory store with the same behavior.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/company-pulse/internal/types"
)

var (
	// ErrNotFound is returned by updates and deletes that match no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key (company name, article URL) already exists.
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the persistence used by the resolver and the news service.
// Lookups that find nothing return (nil, nil).
type Store interface {
	ListCompanies(ctx context.Context) ([]types.Company, error)
	GetCompany(ctx context.Context, id int64) (*types.Company, error)
	GetCompanyByName(ctx context.Context, name string) (*types.Company, error)
	CreateCompany(ctx context.Context, c *types.Company) error
	UpdateCompany(ctx context.Context, c *types.Company) error
	DeleteCompany(ctx context.Context, id int64) error

	GetArticle(ctx context.Context, id int64) (*types.NewsArticle, error)
	GetArticleByURL(ctx context.Context, url string) (*types.NewsArticle, error)
	ListArticles(ctx context.Context, f ArticleFilter) ([]types.NewsArticle, error)
	CreateArticle(ctx context.Context, a *types.NewsArticle) error
	CreateArticles(ctx context.Context, articles []types.NewsArticle) ([]types.NewsArticle, error)
	UpdateHighlights(ctx context.Context, id int64, highlights []types.Highlight) error
	DeleteArticle(ctx context.Context, id int64) error

	UpsertSocialContent(ctx context.Context, sc *types.SocialContent) error
	ListSocialContent(ctx context.Context, articleID int64) ([]types.SocialContent, error)

	Close()
}

// ArticleFilter narrows ListArticles. Zero values are ignored.
type ArticleFilter struct {
	CompanyID  int64
	SourceName string
	Since      time.Time
	Search     string // case-insensitive substring of the title
	Limit      int
	Offset     int
}

// DefaultListLimit caps ListArticles when the filter sets no limit.
const DefaultListLimit = 50

func (f ArticleFilter) limit() int {
	if f.Limit <= 0 {
		return DefaultListLimit
	}
	return f.Limit
}

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

var _ Store = (*DB)(nil)

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Ping checks the connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// withLockedTable runs fn in a transaction holding a write lock on table, so
// MAX(id)+1 allocation cannot race with another writer.
func (db *DB) withLockedTable(ctx context.Context, table string, fn func(pgx.Tx) error) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "LOCK TABLE "+table+" IN SHARE ROW EXCLUSIVE MODE"); err != nil {
		return fmt.Errorf("failed to lock %s: %w", table, err)
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
