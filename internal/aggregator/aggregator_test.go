package aggregator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/company-pulse/internal/sources"
	"github.com/jonathan/company-pulse/internal/types"
)

type fakeConnector struct {
	name     string
	articles []types.RawArticle
	err      error
	delay    time.Duration
	gotLimit int
}

func (f *fakeConnector) Name() string { return f.name }

func (f *fakeConnector) Search(ctx context.Context, _ string, limit int) ([]types.RawArticle, error) {
	f.gotLimit = limit
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}

func makeArticles(source string, n int, published time.Time) []types.RawArticle {
	out := make([]types.RawArticle, n)
	for i := range out {
		out[i] = types.RawArticle{
			Title:       fmt.Sprintf("Acme story %s %d", source, i),
			Body:        "Acme body text.",
			URL:         fmt.Sprintf("https://%s.example.com/acme/%d", source, i),
			SourceName:  source,
			PublishedAt: published.Add(-time.Duration(i) * time.Hour),
		}
	}
	return out
}

func TestQuota(t *testing.T) {
	three := New([]sources.Connector{&fakeConnector{}, &fakeConnector{}, &fakeConnector{}}, Config{MaxPerSource: 5})

	assert.Equal(t, 4, three.Quota(10))
	assert.Equal(t, 1, three.Quota(1))
	assert.Equal(t, 5, three.Quota(100))
	assert.Equal(t, 0, three.Quota(0))
	assert.Equal(t, 0, New(nil, Config{}).Quota(10))
}

func TestAggregate_PartialFailure(t *testing.T) {
	now := time.Now()
	fast1 := &fakeConnector{name: "a", articles: makeArticles("a", 3, now)}
	fast2 := &fakeConnector{name: "b", articles: makeArticles("b", 2, now)}
	slow := &fakeConnector{name: "slow", articles: makeArticles("slow", 3, now), delay: 5 * time.Second}

	agg := New([]sources.Connector{fast1, slow, fast2}, Config{SourceTimeout: 50 * time.Millisecond})

	res, err := agg.Aggregate(context.Background(), "Acme", 30)
	require.NoError(t, err)

	assert.Len(t, res.Articles, 5)
	assert.Equal(t, []string{"a", "b"}, res.Sources)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, sources.CodeTimeout, res.Errors[0].Code)
	assert.Equal(t, "slow", res.Errors[0].Source)
}

func TestAggregate_AllFail(t *testing.T) {
	first := &sources.Error{Code: sources.CodeHTTPStatus, Source: "a", Message: "unexpected HTTP status 500"}
	agg := New([]sources.Connector{
		&fakeConnector{name: "a", err: first},
		&fakeConnector{name: "b", err: errors.New("connection refused")},
	}, Config{})

	res, err := agg.Aggregate(context.Background(), "Acme", 10)
	require.Error(t, err)
	assert.Same(t, first, err)
	require.NotNil(t, res)
	assert.Len(t, res.Errors, 2)
	assert.Equal(t, sources.CodeSourceUnavailable, res.Errors[1].Code)
}

func TestAggregate_EmptyButHealthy(t *testing.T) {
	agg := New([]sources.Connector{
		&fakeConnector{name: "a", err: errors.New("down")},
		&fakeConnector{name: "unconfigured"},
	}, Config{})

	res, err := agg.Aggregate(context.Background(), "Acme", 10)
	require.NoError(t, err)
	assert.Empty(t, res.Articles)
	assert.Len(t, res.Errors, 1)
}

func TestAggregate_QuotaAndTruncate(t *testing.T) {
	now := time.Now()
	a := &fakeConnector{name: "a", articles: makeArticles("a", 10, now)}
	b := &fakeConnector{name: "b", articles: makeArticles("b", 10, now)}

	agg := New([]sources.Connector{a, b}, Config{})
	res, err := agg.Aggregate(context.Background(), "Acme", 5)
	require.NoError(t, err)

	assert.Equal(t, 3, a.gotLimit)
	assert.Equal(t, 3, b.gotLimit)
	assert.Len(t, res.Articles, 5)
}

func TestAggregate_Scenario(t *testing.T) {
	now := time.Now()
	a := makeArticles("wire", 7, now)
	b := makeArticles("blog", 5, now)
	// Three of the blog entries syndicate wire stories.
	for i := 0; i < 3; i++ {
		b[i] = a[i]
		b[i].SourceName = "blog"
	}

	agg := New([]sources.Connector{
		&fakeConnector{name: "wire", articles: a},
		&fakeConnector{name: "blog", articles: b},
	}, Config{})

	res, err := agg.Aggregate(context.Background(), "Acme", 20)
	require.NoError(t, err)
	assert.Len(t, res.Articles, 9)

	for i := 1; i < len(res.Articles); i++ {
		prev, cur := res.Articles[i-1], res.Articles[i]
		if prev.RelevanceScore == cur.RelevanceScore {
			assert.False(t, cur.PublishedAt.After(prev.PublishedAt))
		} else {
			assert.Greater(t, prev.RelevanceScore, cur.RelevanceScore)
		}
	}
}

func TestAggregate_ZeroMax(t *testing.T) {
	agg := New([]sources.Connector{&fakeConnector{name: "a"}}, Config{})
	res, err := agg.Aggregate(context.Background(), "Acme", 0)
	require.NoError(t, err)
	assert.Empty(t, res.Articles)
}

func TestConnectors(t *testing.T) {
	agg := New([]sources.Connector{&fakeConnector{name: "a"}, &fakeConnector{name: "b"}}, DefaultConfig())
	assert.Equal(t, []string{"a", "b"}, agg.Connectors())
}
