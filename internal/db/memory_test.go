package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/company-pulse/internal/types"
)

func seedCompany(t *testing.T, s Store, name string) *types.Company {
	t.Helper()
	c := &types.Company{Name: name}
	require.NoError(t, s.CreateCompany(context.Background(), c))
	return c
}

func article(companyID int64, url string, published time.Time) types.NewsArticle {
	return types.NewsArticle{
		CompanyID:   companyID,
		Title:       "Story at " + url,
		Body:        "Body",
		SourceURL:   url,
		SourceName:  "newsapi",
		PublishedAt: published,
		FetchedAt:   published.Add(time.Hour),
	}
}

func TestMemory_CompanyLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	apple := seedCompany(t, m, "Apple")
	msft := seedCompany(t, m, "Microsoft")
	assert.Equal(t, int64(1), apple.ID)
	assert.Equal(t, int64(2), msft.ID)
	assert.NotNil(t, apple.Aliases)
	assert.False(t, apple.CreatedAt.IsZero())

	err := m.CreateCompany(ctx, &types.Company{Name: "APPLE"})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := m.GetCompanyByName(ctx, " apple ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, apple.ID, got.ID)

	ticker := "AAPL"
	got.Aliases = append(got.Aliases, "Apple Inc")
	got.Ticker = &ticker
	require.NoError(t, m.UpdateCompany(ctx, got))

	reloaded, err := m.GetCompany(ctx, apple.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple Inc"}, reloaded.Aliases)
	assert.Equal(t, "AAPL", reloaded.TickerValue())

	// Returned records are copies.
	reloaded.Aliases[0] = "changed"
	again, _ := m.GetCompany(ctx, apple.ID)
	assert.Equal(t, "Apple Inc", again.Aliases[0])

	missing, err := m.GetCompany(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.ErrorIs(t, m.UpdateCompany(ctx, &types.Company{ID: 99, Name: "Ghost"}), ErrNotFound)
	assert.ErrorIs(t, m.UpdateCompany(ctx, &types.Company{ID: msft.ID, Name: "apple"}), ErrDuplicate)

	all, err := m.ListCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Apple", all[0].Name)
}

func TestMemory_IDsFollowMax(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	seedCompany(t, m, "A1")
	second := seedCompany(t, m, "B2")
	require.NoError(t, m.DeleteCompany(ctx, second.ID))

	third := seedCompany(t, m, "C3")
	assert.Equal(t, int64(2), third.ID)
}

func TestMemory_CreateArticlesSkipsKnownURLs(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	c := seedCompany(t, m, "Apple")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	created, err := m.CreateArticles(ctx, []types.NewsArticle{
		article(c.ID, "https://a.example/1", now),
		article(c.ID, "https://a.example/2", now),
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, int64(1), created[0].ID)
	assert.Equal(t, int64(2), created[1].ID)
	assert.NotNil(t, created[0].Highlights)

	created, err = m.CreateArticles(ctx, []types.NewsArticle{
		article(c.ID, "https://a.example/2", now),
		article(c.ID, "https://a.example/3", now),
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "https://a.example/3", created[0].SourceURL)
	assert.Equal(t, int64(3), created[0].ID)

	dup := article(c.ID, "https://a.example/1", now)
	assert.ErrorIs(t, m.CreateArticle(ctx, &dup), ErrDuplicate)

	orphan := article(42, "https://a.example/orphan", now)
	assert.ErrorIs(t, m.CreateArticle(ctx, &orphan), ErrNotFound)

	byURL, err := m.GetArticleByURL(ctx, "https://a.example/3")
	require.NoError(t, err)
	require.NotNil(t, byURL)
	assert.Equal(t, int64(3), byURL.ID)
}

func TestMemory_ListArticles(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	apple := seedCompany(t, m, "Apple")
	msft := seedCompany(t, m, "Microsoft")
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	var batch []types.NewsArticle
	for i := range 5 {
		batch = append(batch, article(apple.ID, fmt.Sprintf("https://apple.example/%d", i), base.Add(time.Duration(i)*time.Hour)))
	}
	other := article(msft.ID, "https://msft.example/1", base)
	other.SourceName = "rss"
	other.Title = "Microsoft cloud earnings"
	batch = append(batch, other)
	_, err := m.CreateArticles(ctx, batch)
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter ArticleFilter
		urls   []string
	}{
		{
			name:   "company newest first with limit",
			filter: ArticleFilter{CompanyID: apple.ID, Limit: 2},
			urls:   []string{"https://apple.example/4", "https://apple.example/3"},
		},
		{
			name:   "offset",
			filter: ArticleFilter{CompanyID: apple.ID, Limit: 2, Offset: 3},
			urls:   []string{"https://apple.example/1", "https://apple.example/0"},
		},
		{
			name:   "since",
			filter: ArticleFilter{CompanyID: apple.ID, Since: base.Add(3 * time.Hour)},
			urls:   []string{"https://apple.example/4", "https://apple.example/3"},
		},
		{
			name:   "source and search",
			filter: ArticleFilter{SourceName: "rss", Search: "CLOUD"},
			urls:   []string{"https://msft.example/1"},
		},
		{
			name:   "offset past end",
			filter: ArticleFilter{Offset: 10},
			urls:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.ListArticles(ctx, tt.filter)
			require.NoError(t, err)
			var urls []string
			for _, a := range got {
				urls = append(urls, a.SourceURL)
			}
			assert.Equal(t, tt.urls, urls)
		})
	}
}

func TestMemory_HighlightsAndSocialContent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	c := seedCompany(t, m, "Apple")
	a := article(c.ID, "https://a.example/1", time.Now())
	require.NoError(t, m.CreateArticle(ctx, &a))

	hs := []types.Highlight{{Text: "Revenue grew 8%", Importance: 4, Category: types.CategoryFinancial}}
	require.NoError(t, m.UpdateHighlights(ctx, a.ID, hs))
	assert.ErrorIs(t, m.UpdateHighlights(ctx, 99, hs), ErrNotFound)

	got, err := m.GetArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, hs, got.Highlights)

	first := &types.SocialContent{ArticleID: a.ID, Platform: types.PlatformTwitter, Content: "v1", CharacterCount: 2}
	require.NoError(t, m.UpsertSocialContent(ctx, first))
	require.NoError(t, m.UpsertSocialContent(ctx, &types.SocialContent{ArticleID: a.ID, Platform: types.PlatformLinkedIn, Content: "li"}))

	replaced := &types.SocialContent{ArticleID: a.ID, Platform: types.PlatformTwitter, Content: "v2", Hashtags: []string{"#AAPL"}, CharacterCount: 2}
	require.NoError(t, m.UpsertSocialContent(ctx, replaced))
	assert.Equal(t, first.ID, replaced.ID)

	posts, err := m.ListSocialContent(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, types.PlatformLinkedIn, posts[0].Platform)
	assert.Equal(t, types.PlatformTwitter, posts[1].Platform)
	assert.Equal(t, "v2", posts[1].Content)
	assert.Equal(t, []string{"#AAPL"}, posts[1].Hashtags)

	err = m.UpsertSocialContent(ctx, &types.SocialContent{ArticleID: 99, Platform: types.PlatformTwitter})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	c := seedCompany(t, m, "Apple")
	a := article(c.ID, "https://a.example/1", time.Now())
	require.NoError(t, m.CreateArticle(ctx, &a))
	require.NoError(t, m.UpsertSocialContent(ctx, &types.SocialContent{ArticleID: a.ID, Platform: types.PlatformTwitter, Content: "x"}))

	require.NoError(t, m.DeleteCompany(ctx, c.ID))
	assert.ErrorIs(t, m.DeleteCompany(ctx, c.ID), ErrNotFound)

	got, err := m.GetArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	posts, err := m.ListSocialContent(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.ErrorIs(t, m.DeleteArticle(ctx, a.ID), ErrNotFound)
}
