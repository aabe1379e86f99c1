package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListArticlesQuery(t *testing.T) {
	since := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		filter    ArticleFilter
		wantWhere string
		wantTail  string
		wantArgs  []any
	}{
		{
			name:     "no filter uses default limit",
			filter:   ArticleFilter{},
			wantTail: "ORDER BY published_at DESC, id DESC LIMIT 50",
		},
		{
			name:      "company and since",
			filter:    ArticleFilter{CompanyID: 7, Since: since, Limit: 10},
			wantWhere: "WHERE company_id = $1 AND published_at >= $2",
			wantTail:  "LIMIT 10",
			wantArgs:  []any{int64(7), since},
		},
		{
			name:      "search with offset",
			filter:    ArticleFilter{SourceName: "rss", Search: " Cloud ", Offset: 20},
			wantWhere: "WHERE source_name = $1 AND title ILIKE $2",
			wantTail:  "LIMIT 50 OFFSET 20",
			wantArgs:  []any{"rss", "%Cloud%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := listArticlesQuery(tt.filter)
			require.NoError(t, err)

			assert.Contains(t, query, "SELECT id, company_id, title")
			assert.Contains(t, query, "FROM news_articles")
			if tt.wantWhere != "" {
				assert.Contains(t, query, tt.wantWhere)
			} else {
				assert.NotContains(t, query, "WHERE")
			}
			assert.Contains(t, query, tt.wantTail)
			assert.Equal(t, tt.wantArgs, nilIfEmpty(args))
		})
	}
}

func nilIfEmpty(args []any) []any {
	if len(args) == 0 {
		return nil
	}
	return args
}

func TestMigrationURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@localhost:5432/pulse", MigrationURL("postgres://u:p@localhost:5432/pulse"))
	assert.Equal(t, "pgx5://localhost/pulse?sslmode=disable", MigrationURL("postgresql://localhost/pulse?sslmode=disable"))
	assert.Equal(t, "pgx5://already", MigrationURL("pgx5://already"))
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "0001_init.up.sql")
	assert.Contains(t, names, "0001_init.down.sql")
}
