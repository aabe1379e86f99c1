package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/company-pulse/internal/types"
)

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "acme beats q1 estimates", NormalizeTitle("  Acme BEATS Q1 estimates!! "))
	assert.Equal(t, "acmes new ceo", NormalizeTitle("Acme's new CEO"))
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://WWW.Example.com/news/acme/", "https://example.com/news/acme"},
		{"https://example.com/a?utm_source=x&id=5#frag", "https://example.com/a?id=5"},
		{"not a url", "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeURL(tt.input))
		})
	}
}

func TestDedup(t *testing.T) {
	articles := []types.RawArticle{
		{Title: "Acme beats estimates", URL: "https://example.com/a", RelevanceScore: 40},
		{Title: "Acme Beats Estimates!", URL: "https://www.example.com/a/", RelevanceScore: 70},
		{Title: "Acme beats estimates", URL: "https://other.com/a", RelevanceScore: 10},
		{Title: "Different story", URL: "https://example.com/b", RelevanceScore: 20},
	}

	out := Dedup(articles)
	assert.Len(t, out, 3)
	assert.Equal(t, 70.0, out[0].RelevanceScore)
	assert.Equal(t, "https://other.com/a", out[1].URL)

	assert.LessOrEqual(t, len(out), len(articles))
	assert.Equal(t, out, Dedup(out))
}

func TestLocalRelevance(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	fresh := types.RawArticle{Title: "Acme Labs wins contract", Body: "Acme Labs said.", PublishedAt: now}
	stale := fresh
	stale.PublishedAt = now.Add(-100 * time.Hour)
	half := fresh
	half.PublishedAt = now.Add(-36 * time.Hour)

	freshScore := LocalRelevance(fresh, "Acme Labs", now)
	assert.InDelta(t, 20+4+20+20, freshScore, 0.001)
	assert.InDelta(t, freshScore-20, LocalRelevance(stale, "Acme Labs", now), 0.001)
	assert.InDelta(t, freshScore-10, LocalRelevance(half, "Acme Labs", now), 0.001)

	unrelated := types.RawArticle{Title: "Weather", PublishedAt: now.Add(-200 * time.Hour)}
	assert.Equal(t, 0.0, LocalRelevance(unrelated, "Acme", now))
}

func TestSortByRelevance(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-200 * time.Hour)
	older := now.Add(-300 * time.Hour)

	articles := []types.RawArticle{
		{Title: "Weather report", URL: "1", PublishedAt: old},
		{Title: "Acme news", URL: "2", PublishedAt: older},
		{Title: "Acme news", URL: "3", PublishedAt: old},
		{Title: "Acme Acme news", URL: "4", PublishedAt: older},
	}

	SortByRelevance(articles, "Acme", now)

	urls := []string{articles[0].URL, articles[1].URL, articles[2].URL, articles[3].URL}
	assert.Equal(t, []string{"4", "3", "2", "1"}, urls)
}
