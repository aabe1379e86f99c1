package sources

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/jonathan/company-pulse/internal/fetch"
	"github.com/jonathan/company-pulse/internal/types"
)

// QueryPlaceholder is replaced by the escaped company name in feed URL templates.
const QueryPlaceholder = "{query}"

// DefaultRSSFeeds are search feeds queried when none are configured.
var DefaultRSSFeeds = []string{
	"https://news.google.com/rss/search?q=%22" + QueryPlaceholder + "%22&hl=en-US&gl=US&ceid=US:en",
	"https://www.bing.com/news/search?q=%22" + QueryPlaceholder + "%22&format=rss",
}

// RSSConnector reads RSS/Atom search feeds.
type RSSConnector struct {
	name      string
	templates []string
	options   *fetch.Options
	parser    *gofeed.Parser
}

// NewRSSConnector creates a connector over the given feed URL templates.
func NewRSSConnector(name string, templates []string, opts *fetch.Options) *RSSConnector {
	if name == "" {
		name = "rss"
	}
	if opts == nil {
		opts = fetch.DefaultOptions()
	}
	return &RSSConnector{
		name:      name,
		templates: templates,
		options:   opts,
		parser:    gofeed.NewParser(),
	}
}

// Name identifies the connector.
func (c *RSSConnector) Name() string { return c.name }

// Search fetches every feed and merges their items. The search fails only
// when every feed fails.
func (c *RSSConnector) Search(ctx context.Context, companyName string, limit int) ([]types.RawArticle, error) {
	if len(c.templates) == 0 || limit <= 0 {
		return nil, nil
	}

	var articles []types.RawArticle
	var firstErr error
	failures := 0

	for _, tmpl := range c.templates {
		feedURL := strings.ReplaceAll(tmpl, QueryPlaceholder, url.QueryEscape(companyName))
		items, err := c.readFeed(ctx, feedURL)
		if err != nil {
			failures++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		articles = append(articles, items...)
	}

	if failures == len(c.templates) {
		return nil, AsError(c.name, firstErr)
	}
	return finalize(companyName, articles, limit, 0), nil
}

func (c *RSSConnector) readFeed(ctx context.Context, feedURL string) ([]types.RawArticle, error) {
	res, err := fetch.URL(ctx, feedURL, c.options)
	if err != nil {
		return nil, err
	}

	feed, err := c.parser.ParseString(res.Body)
	if err != nil {
		return nil, &Error{Code: CodeDecode, Source: c.name, Message: "failed to parse feed", Cause: err}
	}

	articles := make([]types.RawArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		articles = append(articles, itemToArticle(feed, item))
	}
	return articles, nil
}

func itemToArticle(feed *gofeed.Feed, item *gofeed.Item) types.RawArticle {
	body := item.Description
	if strings.TrimSpace(item.Content) != "" {
		body = item.Content
	}

	var published time.Time
	switch {
	case item.PublishedParsed != nil:
		published = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		published = *item.UpdatedParsed
	}

	return types.RawArticle{
		Title:       strings.TrimSpace(item.Title),
		Body:        fetch.StripHTML(body),
		URL:         strings.TrimSpace(item.Link),
		SourceName:  itemSource(feed, item),
		PublishedAt: published,
	}
}

// itemSource prefers the item author, then the feed title, then the link host.
func itemSource(feed *gofeed.Feed, item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	if feed.Title != "" {
		return feed.Title
	}
	if u, err := url.Parse(item.Link); err == nil {
		return strings.TrimPrefix(u.Hostname(), "www.")
	}
	return ""
}
