package fetch

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the minimum extracted text length for a static fetch to
// count as successful. Shorter pages are likely rendered client-side.
const MinContentLength = 300

// ShouldUseBrowser reports whether extracted text is too thin to trust.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// Renderer renders a page and returns its HTML.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Browser renders pages in headless Chrome. Chrome/Chromium must be installed.
type Browser struct {
	Timeout time.Duration
	Verbose bool
}

// Render navigates to url, waits for the body, and returns the rendered HTML.
func (b *Browser) Render(ctx context.Context, url string) (string, error) {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if b.Verbose {
		log.Printf("[BROWSER] Rendering %s", url)
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &Error{URL: url, Message: "browser rendering failed", Cause: err}
	}

	if b.Verbose {
		log.Printf("[BROWSER] Rendered %s: %d bytes", url, len(html))
	}
	return html, nil
}

// Ensure Browser satisfies Renderer.
var _ Renderer = (*Browser)(nil)

// Page fetches url statically and falls back to renderer when the extracted
// text is too thin. A nil renderer disables the fallback.
func Page(ctx context.Context, url string, opts *Options, renderer Renderer) (string, error) {
	res, err := URL(ctx, url, opts)
	if err == nil {
		text, _ := ExtractMainText(res.Body, ArticleSelectors())
		if renderer == nil || !ShouldUseBrowser(text) {
			return res.Body, nil
		}
	}
	if renderer == nil {
		return "", err
	}

	html, rerr := renderer.Render(ctx, url)
	if rerr != nil {
		if err != nil {
			return "", err
		}
		// Static HTML is still better than nothing.
		return res.Body, nil
	}
	return html, nil
}
