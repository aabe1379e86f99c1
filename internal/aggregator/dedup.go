package aggregator

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/jonathan/company-pulse/internal/types"
)

var titlePunctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// NormalizeTitle lower-cases a title, strips punctuation, and collapses whitespace.
func NormalizeTitle(title string) string {
	s := titlePunctuation.ReplaceAllString(strings.ToLower(title), "")
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeURL lower-cases scheme and host, drops "www.", fragments,
// utm_* tracking parameters, and any trailing slash.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimSpace(raw))
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	u.Fragment = ""

	q := u.Query()
	for key := range q {
		if strings.HasPrefix(strings.ToLower(key), "utm_") {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()
	u.Path = strings.TrimRight(u.Path, "/")

	return u.String()
}

// DedupKey identifies an article across sources.
func DedupKey(a types.RawArticle) string {
	return NormalizeTitle(a.Title) + "|" + NormalizeURL(a.URL)
}

// Dedup removes articles sharing a DedupKey, keeping the one with the higher
// relevance score. Order of first appearance is preserved.
func Dedup(articles []types.RawArticle) []types.RawArticle {
	index := make(map[string]int, len(articles))
	out := make([]types.RawArticle, 0, len(articles))

	for _, a := range articles {
		key := DedupKey(a)
		if i, ok := index[key]; ok {
			if a.RelevanceScore > out[i].RelevanceScore {
				out[i] = a
			}
			continue
		}
		index[key] = len(out)
		out = append(out, a)
	}
	return out
}
