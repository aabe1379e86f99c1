package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/company-pulse/internal/generation"
	"github.com/jonathan/company-pulse/internal/pipeline"
	"github.com/jonathan/company-pulse/internal/sources"
	"github.com/jonathan/company-pulse/internal/types"
)

func (ts *testServer) fetchApple(t *testing.T) *pipeline.NewsResult {
	t.Helper()
	w := ts.do(http.MethodPost, "/news", types.NewsQueryRequest{Company: "Apple Inc.", MaxArticles: 10})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[pipeline.NewsResult](t, w)
	require.NotEmpty(t, res.Articles)
	return &res
}

func TestFetchNews(t *testing.T) {
	ts := newTestServer(t)

	res := ts.fetchApple(t)

	assert.Equal(t, "Apple", res.Company.Name)
	assert.Len(t, res.Articles, 2)
	assert.Equal(t, 2, res.Stored)
	assert.Equal(t, []string{"newsapi"}, res.Sources)
}

func TestFetchNews_ValidationError(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/news", types.NewsQueryRequest{Company: "A", MaxArticles: 500})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[ErrorResponse](t, w)
	assert.Equal(t, "VALIDATION_FAILED", resp.Code)
	assert.Contains(t, resp.Details, "company: failed min=2")
	assert.Contains(t, resp.Details, "max_articles: failed max=100")
}

func TestFetchNews_AllSourcesFailed(t *testing.T) {
	ts := newTestServer(t)
	ts.searcher.err = &sources.Error{Code: sources.CodeSourceUnavailable, Source: "newsapi", Message: "down"}

	w := ts.do(http.MethodPost, "/news", types.NewsQueryRequest{Company: "Apple"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, sources.CodeSourceUnavailable, decode[ErrorResponse](t, w).Code)
}

func TestFetchNewsStream(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/news/stream", types.NewsQueryRequest{Company: "Apple"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "event: step\ndata: ")
	assert.Contains(t, body, `"step":"`+pipeline.StepResolve+`"`)
	assert.Contains(t, body, "event: result\n")
	assert.Contains(t, body, "event: complete\n")
	assert.Less(t, strings.Index(body, pipeline.StepResolve), strings.Index(body, "event: result"))
}

func TestFetchNewsStream_InvalidRequestIsPlainJSON(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/news/stream", types.NewsQueryRequest{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestFetchNewsStream_FailureIsErrorEvent(t *testing.T) {
	ts := newTestServer(t)
	ts.searcher.err = &sources.Error{Code: sources.CodeTimeout, Source: "rss", Message: "slow"}

	w := ts.do(http.MethodPost, "/news/stream", types.NewsQueryRequest{Company: "Apple"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "event: error\n")
	assert.Contains(t, w.Body.String(), `"code":"TIMEOUT"`)
	assert.NotContains(t, w.Body.String(), "event: complete")
}

func TestListArticles(t *testing.T) {
	ts := newTestServer(t)
	res := ts.fetchApple(t)

	w := ts.do(http.MethodGet, fmt.Sprintf("/companies/%d/articles?limit=1", res.Company.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[struct {
		Articles []types.NewsArticle `json:"articles"`
		Limit    int                 `json:"limit"`
	}](t, w)
	assert.Len(t, page.Articles, 1)
	assert.Equal(t, 1, page.Limit)

	w = ts.do(http.MethodGet, fmt.Sprintf("/companies/%d/articles?q=india", res.Company.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Apple expands retail footprint in India")
	assert.NotContains(t, w.Body.String(), "record quarterly earnings")
}

func TestListArticles_Errors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		path string
		want int
	}{
		{name: "non-numeric id", path: "/companies/abc/articles", want: http.StatusBadRequest},
		{name: "unknown company", path: "/companies/99/articles", want: http.StatusNotFound},
		{name: "bad since", path: "/companies/1/articles?since=yesterday", want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ts.do(http.MethodGet, tt.path, nil).Code)
		})
	}
}

func TestGenerateForArticle(t *testing.T) {
	ts := newTestServer(t)
	res := ts.fetchApple(t)
	id := res.Articles[0].ID

	w := ts.do(http.MethodPost, fmt.Sprintf("/articles/%d/generate", id),
		types.GenerateContentRequest{Platforms: []types.Platform{types.PlatformTwitter, types.PlatformLinkedIn}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	gen := decode[pipeline.GenerationResult](t, w)
	assert.Len(t, gen.Content, 2)
	assert.NotEmpty(t, gen.Article.Highlights)

	w = ts.do(http.MethodGet, fmt.Sprintf("/articles/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	article := decode[ArticleResponse](t, w)
	assert.Equal(t, id, article.ID)
	assert.Len(t, article.SocialContent, 2)
	assert.NotEmpty(t, article.Highlights)
}

func TestGenerateForArticle_Errors(t *testing.T) {
	ts := newTestServer(t)
	res := ts.fetchApple(t)
	id := res.Articles[0].ID
	twitter := types.GenerateContentRequest{Platforms: []types.Platform{types.PlatformTwitter}}

	w := ts.do(http.MethodPost, "/articles/12345/generate", twitter)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodPost, fmt.Sprintf("/articles/%d/generate", id), `{"platforms":["myspace"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ts.gen.highlightErr = &generation.ProviderError{Provider: "all", Code: generation.CodeAllProvidersFailed, Message: "every provider failed"}
	w = ts.do(http.MethodPost, fmt.Sprintf("/articles/%d/generate", id), twitter)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, generation.CodeAllProvidersFailed, decode[ErrorResponse](t, w).Code)
}

func TestGenerateForArticleStream(t *testing.T) {
	ts := newTestServer(t)
	res := ts.fetchApple(t)

	w := ts.do(http.MethodPost, fmt.Sprintf("/articles/%d/generate/stream", res.Articles[0].ID),
		types.GenerateContentRequest{Platforms: []types.Platform{types.PlatformFacebook}})

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"step":"`+pipeline.StepHighlights+`"`)
	assert.Contains(t, body, `"step":"`+pipeline.StepSocial+`"`)
	assert.Contains(t, body, "event: complete\n")
}

func TestGetArticle_NotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/articles/7", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "article 7 not found", decode[ErrorResponse](t, w).Error)
}

func TestExtractHighlights(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/highlights", types.HighlightRequest{
		CompanyName: "Nvidia",
		Content:     "Nvidia said data center revenue doubled year over year.",
	})
	require.Equal(t, http.StatusOK, w.Code)
	out := decode[generation.HighlightOutcome](t, w)
	assert.Equal(t, "gemini", out.Data.Provider)
	assert.True(t, out.Accepted)

	w = ts.do(http.MethodPost, "/highlights", types.HighlightRequest{CompanyName: "Nvidia", Content: "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ts.gen.highlightErr = &generation.ProviderError{Provider: "none", Code: generation.CodeNotConfigured, Message: "no provider"}
	w = ts.do(http.MethodPost, "/highlights", types.HighlightRequest{
		CompanyName: "Nvidia",
		Content:     "Nvidia said data center revenue doubled year over year.",
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGenerateSocial(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/social", types.SocialRequest{
		CompanyName: "Nvidia",
		Highlights:  []types.Highlight{{Text: "Data center revenue doubled", Importance: 5, Category: types.CategoryFinancial}},
		Platforms:   []types.Platform{types.PlatformInstagram},
	})
	require.Equal(t, http.StatusOK, w.Code)
	out := decode[generation.SocialOutcome](t, w)
	require.Len(t, out.Data.Posts, 1)
	assert.Equal(t, types.PlatformInstagram, out.Data.Posts[0].Platform)

	w = ts.do(http.MethodPost, "/social", types.SocialRequest{CompanyName: "Nvidia"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProviderHealth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/providers/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"providers":[],"checked":false}`, w.Body.String())

	w = ts.do(http.MethodGet, "/providers/health?check=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[struct {
		Providers []generation.ProviderHealth `json:"providers"`
		Checked   bool                        `json:"checked"`
	}](t, w)
	assert.True(t, resp.Checked)
	require.Len(t, resp.Providers, 1)
	assert.True(t, resp.Providers[0].Available)
}
