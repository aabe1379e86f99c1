package fetch

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Link is an anchor found on a listing page.
type Link struct {
	URL  string
	Text string
}

// MinLinkTextLength filters out navigation anchors such as "More" or "Next".
const MinLinkTextLength = 15

// ExtractLinks returns absolute, same-host links found inside any of the
// container selectors, in document order and without duplicates.
func ExtractLinks(html, baseURL string, containerSelectors []string) ([]Link, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, &Error{URL: baseURL, Message: "invalid base URL", Cause: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &Error{URL: baseURL, Message: "failed to parse HTML", Cause: err}
	}

	seen := make(map[string]bool)
	var links []Link
	doc.Find(strings.Join(containerSelectors, ", ")).Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Host != base.Host || (abs.Scheme != "http" && abs.Scheme != "https") {
			return
		}
		abs.Fragment = ""
		u := abs.String()
		if u == base.String() || seen[u] {
			return
		}

		text := strings.Join(strings.Fields(s.Text()), " ")
		if len(text) < MinLinkTextLength {
			return
		}

		seen[u] = true
		links = append(links, Link{URL: u, Text: text})
	})

	return links, nil
}
