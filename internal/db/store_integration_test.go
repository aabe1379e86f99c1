//go:build integration

package db

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/company-pulse/internal/types"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	_, _, err := Migrate(url)
	require.NoError(t, err)

	db, err := Connect(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s %d", prefix, time.Now().UnixNano())
}

func TestDB_CompanyArticleSocialRoundTrip(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()

	c := &types.Company{Name: uniqueName("Integration Co"), Aliases: []string{"ICo"}}
	require.NoError(t, db.CreateCompany(ctx, c))
	t.Cleanup(func() { _ = db.DeleteCompany(ctx, c.ID) })
	assert.Positive(t, c.ID)

	dup := &types.Company{Name: c.Name}
	assert.ErrorIs(t, db.CreateCompany(ctx, dup), ErrDuplicate)

	byName, err := db.GetCompanyByName(ctx, c.Name)
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, []string{"ICo"}, byName.Aliases)

	now := time.Now().UTC().Truncate(time.Second)
	base := fmt.Sprintf("https://integration.example/%d", c.ID)
	created, err := db.CreateArticles(ctx, []types.NewsArticle{
		{CompanyID: c.ID, Title: "First", SourceURL: base + "/1", SourceName: "rss", PublishedAt: now, FetchedAt: now},
		{CompanyID: c.ID, Title: "Second", SourceURL: base + "/2", SourceName: "rss", PublishedAt: now.Add(time.Hour), FetchedAt: now},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	again, err := db.CreateArticles(ctx, []types.NewsArticle{
		{CompanyID: c.ID, Title: "First", SourceURL: base + "/1", SourceName: "rss", PublishedAt: now, FetchedAt: now},
	})
	require.NoError(t, err)
	assert.Empty(t, again)

	listed, err := db.ListArticles(ctx, ArticleFilter{CompanyID: c.ID})
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Second", listed[0].Title)

	hs := []types.Highlight{{Text: "Margins widened", Importance: 3, Category: types.CategoryFinancial}}
	require.NoError(t, db.UpdateHighlights(ctx, created[0].ID, hs))
	got, err := db.GetArticle(ctx, created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, hs, got.Highlights)

	sc := &types.SocialContent{ArticleID: created[0].ID, Platform: types.PlatformTwitter, Content: "v1", CharacterCount: 2}
	require.NoError(t, db.UpsertSocialContent(ctx, sc))
	sc2 := &types.SocialContent{ArticleID: created[0].ID, Platform: types.PlatformTwitter, Content: "v2", Hashtags: []string{"#ICo"}, CharacterCount: 2}
	require.NoError(t, db.UpsertSocialContent(ctx, sc2))
	assert.Equal(t, sc.ID, sc2.ID)

	posts, err := db.ListSocialContent(ctx, created[0].ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "v2", posts[0].Content)
}
