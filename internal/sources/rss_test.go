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

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Acme News Search</title>
  <link>https://news.example.com</link>
  <item>
    <title>Acme expands into Europe</title>
    <link>https://news.example.com/acme-europe</link>
    <description>&lt;p&gt;Acme announced &lt;b&gt;expansion&lt;/b&gt; plans.&lt;/p&gt;</description>
    <pubDate>Wed, 01 May 2024 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Unrelated story</title>
    <link>https://news.example.com/other</link>
    <description>Nothing here.</description>
    <pubDate>Wed, 01 May 2024 09:00:00 GMT</pubDate>
  </item>
</channel>
</rss>`

func TestRSSConnector_Search(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFeed))
	}))
	defer server.Close()

	c := NewRSSConnector("", []string{server.URL + "/rss?q=" + QueryPlaceholder}, nil)
	assert.Equal(t, "rss", c.Name())

	articles, err := c.Search(context.Background(), "Acme Labs", 10)
	require.NoError(t, err)
	assert.Equal(t, "Acme Labs", gotQuery)

	require.Len(t, articles, 1)
	a := articles[0]
	assert.Equal(t, "Acme expands into Europe", a.Title)
	assert.Equal(t, "Acme announced expansion plans.", a.Body)
	assert.Equal(t, "Acme News Search", a.SourceName)
	assert.Equal(t, 2024, a.PublishedAt.Year())
	assert.Greater(t, a.RelevanceScore, 20.0)
}

func TestRSSConnector_PartialFeedFailure(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(rssFeed))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()

	c := NewRSSConnector("rss", []string{bad.URL, good.URL}, nil)
	articles, err := c.Search(context.Background(), "Acme", 10)
	require.NoError(t, err)
	assert.Len(t, articles, 1)
}

func TestRSSConnector_AllFeedsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("this is not xml"))
	}))
	defer server.Close()

	c := NewRSSConnector("google-news", []string{server.URL}, nil)
	articles, err := c.Search(context.Background(), "Acme", 10)
	assert.Empty(t, articles)

	var srcErr *Error
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, CodeDecode, srcErr.Code)
	assert.Equal(t, "google-news", srcErr.Source)
}

func TestRSSConnector_NoFeeds(t *testing.T) {
	articles, err := NewRSSConnector("rss", nil, nil).Search(context.Background(), "Acme", 10)
	assert.NoError(t, err)
	assert.Empty(t, articles)
}
