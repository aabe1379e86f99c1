package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const newsAPIBody = `{
  "status": "ok",
  "totalResults": 4,
  "articles": [
    {"source": {"name": "Reuters"}, "title": "Acme posts record profit", "description": "Acme Corp reported earnings.", "content": "Acme said revenue rose. [+1200 chars]", "url": "https://reuters.example.com/acme-profit", "publishedAt": "2024-05-01T12:00:00Z"},
    {"source": {"name": "Blog"}, "title": "Weather today", "description": "Sunny.", "content": "", "url": "https://blog.example.com/weather", "publishedAt": "2024-05-01T11:00:00Z"},
    {"source": {"name": "X"}, "title": "[Removed]", "description": "", "content": "", "url": "https://removed.com", "publishedAt": "1970-01-01T00:00:00Z"},
    {"source": {"name": "Bloomberg"}, "title": "Acme to acquire Widgets", "description": "Deal announced.", "content": "", "url": "https://bloomberg.example.com/acme-deal", "publishedAt": "2024-04-30T09:00:00Z"}
  ]
}`

func TestNewsAPIConnector_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, `"Acme"`, r.URL.Query().Get("q"))
		assert.Equal(t, "publishedAt", r.URL.Query().Get("sortBy"))
		assert.Equal(t, "5", r.URL.Query().Get("pageSize"))
		_, _ = w.Write([]byte(newsAPIBody))
	}))
	defer server.Close()

	c := NewNewsAPIConnector("test-key")
	c.BaseURL = server.URL

	articles, err := c.Search(context.Background(), "Acme", 5)
	require.NoError(t, err)
	require.Len(t, articles, 2)

	first := articles[0]
	assert.Equal(t, "Acme posts record profit", first.Title)
	assert.Equal(t, "Reuters", first.SourceName)
	assert.Equal(t, 2024, first.PublishedAt.Year())
	assert.NotContains(t, first.Body, "[+1200 chars]")
	assert.Greater(t, first.RelevanceScore, 0.0)
	assert.Equal(t, "https://bloomberg.example.com/acme-deal", articles[1].URL)
}

func TestNewsAPIConnector_Limit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(newsAPIBody))
	}))
	defer server.Close()

	c := NewNewsAPIConnector("k")
	c.BaseURL = server.URL

	articles, err := c.Search(context.Background(), "Acme", 1)
	require.NoError(t, err)
	assert.Len(t, articles, 1)
}

func TestNewsAPIConnector_Unconfigured(t *testing.T) {
	articles, err := NewNewsAPIConnector("").Search(context.Background(), "Acme", 10)
	assert.NoError(t, err)
	assert.Empty(t, articles)
}

func TestNewsAPIConnector_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    string
		message string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"status":"error","code":"apiKeyInvalid"}`, CodeHTTPStatus, "401"},
		{"malformed", http.StatusOK, `{"status":`, CodeDecode, "malformed"},
		{"api error", http.StatusOK, `{"status":"error","code":"rateLimited","message":"slow down"}`, CodeSourceUnavailable, "rateLimited"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewNewsAPIConnector("k")
			c.BaseURL = server.URL

			articles, err := c.Search(context.Background(), "Acme", 5)
			assert.Empty(t, articles)
			require.Error(t, err)

			var srcErr *Error
			require.True(t, errors.As(err, &srcErr))
			assert.Equal(t, tt.code, srcErr.Code)
			assert.Equal(t, "newsapi", srcErr.Source)
			assert.Contains(t, srcErr.Message, tt.message)
		})
	}
}

func TestStripTruncationMarker(t *testing.T) {
	assert.Equal(t, "Some text", stripTruncationMarker("Some text [+512 chars]"))
	assert.Equal(t, "No marker", stripTruncationMarker("No marker"))
}
