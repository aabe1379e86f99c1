package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/company-pulse/internal/types"
)

// UpsertSocialContent stores sc, replacing any earlier post for the same
// article and platform. The stored id and creation time are written back.
func (db *DB) UpsertSocialContent(ctx context.Context, sc *types.SocialContent) error {
	hashtags := sc.Hashtags
	if hashtags == nil {
		hashtags = []string{}
	}

	err := db.withLockedTable(ctx, "social_content", func(tx pgx.Tx) error {
		return tx.QueryRow(ctx,
			`INSERT INTO social_content (id, article_id, platform, content, hashtags, character_count)
			 SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3, $4, $5 FROM social_content
			 ON CONFLICT (article_id, platform) DO UPDATE
			 SET content = EXCLUDED.content,
			     hashtags = EXCLUDED.hashtags,
			     character_count = EXCLUDED.character_count,
			     created_at = NOW()
			 RETURNING id, created_at`,
			sc.ArticleID, string(sc.Platform), sc.Content, hashtags, sc.CharacterCount,
		).Scan(&sc.ID, &sc.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to upsert social content: %w", err)
	}
	sc.Hashtags = hashtags
	return nil
}

// ListSocialContent returns the stored posts of an article ordered by platform.
func (db *DB) ListSocialContent(ctx context.Context, articleID int64) ([]types.SocialContent, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, article_id, platform, content, hashtags, character_count, created_at
		 FROM social_content WHERE article_id = $1 ORDER BY platform`,
		articleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list social content: %w", err)
	}
	defer rows.Close()

	var out []types.SocialContent
	for rows.Next() {
		var (
			sc       types.SocialContent
			platform string
		)
		if err := rows.Scan(&sc.ID, &sc.ArticleID, &platform, &sc.Content, &sc.Hashtags, &sc.CharacterCount, &sc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan social content: %w", err)
		}
		sc.Platform = types.Platform(platform)
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate social content: %w", err)
	}
	return out, nil
}
