package sources

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/company-pulse/internal/fanout"
	"github.com/jonathan/company-pulse/internal/fetch"
	"github.com/jonathan/company-pulse/internal/types"
)

// DefaultPageTimeout bounds each article page fetch in the newsroom connector.
const DefaultPageTimeout = 10 * time.Second

const newsroomRelevanceFloor = titleHitWeight

// NewsroomConnector scrapes a company's own press-release page.
type NewsroomConnector struct {
	newsrooms   map[string]string
	options     *fetch.Options
	renderer    fetch.Renderer
	pageTimeout time.Duration
}

// NewNewsroomConnector creates a scraper over newsroom URLs keyed by company
// name (case-insensitive). renderer may be nil to disable browser rendering.
func NewNewsroomConnector(newsrooms map[string]string, opts *fetch.Options, renderer fetch.Renderer) *NewsroomConnector {
	normalized := make(map[string]string, len(newsrooms))
	for name, u := range newsrooms {
		normalized[strings.ToLower(strings.TrimSpace(name))] = u
	}
	if opts == nil {
		opts = fetch.DefaultOptions()
	}
	return &NewsroomConnector{
		newsrooms:   normalized,
		options:     opts,
		renderer:    renderer,
		pageTimeout: DefaultPageTimeout,
	}
}

// Name identifies the connector.
func (c *NewsroomConnector) Name() string { return "newsroom" }

// Search lists press-release links on the company's newsroom page and
// extracts each article. Companies without a configured newsroom yield nothing.
func (c *NewsroomConnector) Search(ctx context.Context, companyName string, limit int) ([]types.RawArticle, error) {
	listingURL, ok := c.newsrooms[strings.ToLower(strings.TrimSpace(companyName))]
	if !ok || limit <= 0 {
		return nil, nil
	}

	html, err := fetch.Page(ctx, listingURL, c.options, c.renderer)
	if err != nil {
		return nil, AsError(c.Name(), err)
	}

	links, err := fetch.ExtractLinks(html, listingURL, fetch.NewsroomSelectors())
	if err != nil {
		return nil, &Error{Code: CodeDecode, Source: c.Name(), Message: "failed to parse newsroom page", Cause: err}
	}
	if len(links) > limit {
		links = links[:limit]
	}

	tasks := make([]fanout.Task[types.RawArticle], len(links))
	for i, link := range links {
		tasks[i] = fanout.Task[types.RawArticle]{
			Name: link.URL,
			Run: func(ctx context.Context) (types.RawArticle, error) {
				return c.readArticle(ctx, link)
			},
		}
	}

	results := fanout.Run(ctx, c.pageTimeout, tasks)
	for _, failed := range fanout.Failed(results) {
		log.Printf("[SOURCES] newsroom page %s skipped: %v", failed.Name, failed.Err)
	}

	// Press releases are about the company even when they never repeat its name.
	return finalize(companyName, fanout.Succeeded(results), limit, newsroomRelevanceFloor), nil
}

func (c *NewsroomConnector) readArticle(ctx context.Context, link fetch.Link) (types.RawArticle, error) {
	res, err := fetch.URL(ctx, link.URL, c.options)
	if err != nil {
		return types.RawArticle{}, err
	}

	body, err := fetch.ExtractMainText(res.Body, fetch.ArticleSelectors())
	if err != nil {
		return types.RawArticle{}, err
	}

	title := fetch.PageTitle(res.Body)
	if title == "" {
		title = link.Text
	}
	published, _ := fetch.PublishedTime(res.Body)

	return types.RawArticle{
		Title:       title,
		Body:        body,
		URL:         link.URL,
		SourceName:  hostName(link.URL),
		PublishedAt: published,
	}, nil
}

func hostName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
