package sources

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/company-pulse/internal/fetch"
	"github.com/jonathan/company-pulse/internal/types"
)

// DefaultNewsAPIURL is the NewsAPI "everything" endpoint.
const DefaultNewsAPIURL = "https://newsapi.org/v2/everything"

// NewsAPIConnector searches NewsAPI.org.
type NewsAPIConnector struct {
	APIKey   string
	BaseURL  string
	Language string
	Options  *fetch.Options
}

// NewNewsAPIConnector creates a NewsAPI connector. An empty key leaves it unconfigured.
func NewNewsAPIConnector(apiKey string) *NewsAPIConnector {
	return &NewsAPIConnector{
		APIKey:   apiKey,
		BaseURL:  DefaultNewsAPIURL,
		Language: "en",
		Options:  fetch.DefaultOptions(),
	}
}

// Name identifies the connector.
func (c *NewsAPIConnector) Name() string { return "newsapi" }

type newsAPIResponse struct {
	Status       string `json:"status"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// Search queries NewsAPI for articles mentioning companyName.
func (c *NewsAPIConnector) Search(ctx context.Context, companyName string, limit int) ([]types.RawArticle, error) {
	if c.APIKey == "" {
		return nil, nil
	}
	if limit <= 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", strconv.Quote(companyName))
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(min(limit, 100)))
	if c.Language != "" {
		params.Set("language", c.Language)
	}

	opts := *c.optionsOrDefault()
	opts.Headers = map[string]string{"X-Api-Key": c.APIKey}

	var resp newsAPIResponse
	if err := fetch.JSON(ctx, c.BaseURL+"?"+params.Encode(), &opts, &resp); err != nil {
		return nil, AsError(c.Name(), err)
	}
	if resp.Status != "ok" {
		return nil, &Error{
			Code:    CodeSourceUnavailable,
			Source:  c.Name(),
			Message: fmt.Sprintf("api error %s: %s", resp.Code, resp.Message),
		}
	}

	articles := make([]types.RawArticle, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		// NewsAPI marks articles pulled by publishers this way.
		if a.Title == "[Removed]" {
			continue
		}
		published, _ := time.Parse(time.RFC3339, a.PublishedAt)
		body := strings.TrimSpace(a.Description + "\n" + stripTruncationMarker(a.Content))
		articles = append(articles, types.RawArticle{
			Title:       strings.TrimSpace(a.Title),
			Body:        body,
			URL:         a.URL,
			SourceName:  a.Source.Name,
			PublishedAt: published,
		})
	}

	return finalize(companyName, articles, limit, 0), nil
}

func (c *NewsAPIConnector) optionsOrDefault() *fetch.Options {
	if c.Options != nil {
		return c.Options
	}
	return fetch.DefaultOptions()
}

// stripTruncationMarker removes NewsAPI's "[+123 chars]" suffix.
func stripTruncationMarker(content string) string {
	if i := strings.LastIndex(content, "[+"); i >= 0 && strings.HasSuffix(content, " chars]") {
		return strings.TrimSpace(content[:i])
	}
	return content
}
