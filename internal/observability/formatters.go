// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/company-pulse/internal/companies"
	"github.com/jonathan/company-pulse/internal/generation"
	"github.com/jonathan/company-pulse/internal/pipeline"
	"github.com/jonathan/company-pulse/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func writeMore(sb *strings.Builder, total, shown int, noun string) {
	if total > shown {
		fmt.Fprintf(sb, "... and %d more %s\n", total-shown, noun)
	}
}

// PrintResolution outputs the candidate matches for a company name.
func (p *Printer) PrintResolution(res *companies.Resolution) {
	if res == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Input:     %s\n", res.Input)
	if !res.IsValid {
		sb.WriteString("Invalid:\n")
		for _, reason := range res.ValidationErrors {
			fmt.Fprintf(&sb, "  ✗ %s\n", reason)
		}
		p.printBox("COMPANY RESOLUTION", strings.TrimSuffix(sb.String(), "\n"))
		return
	}

	fmt.Fprintf(&sb, "Canonical: %s\n", res.CanonicalName)
	if len(res.Matches) == 0 {
		sb.WriteString("\nNo matching companies\n")
	} else {
		sb.WriteString("\nMatches:\n")
		count := min(len(res.Matches), maxItemsToShow)
		for _, m := range res.Matches[:count] {
			fmt.Fprintf(&sb, "  • %s (%s, %.2f)\n", m.Company.Name, m.MatchType, m.Confidence)
		}
		writeMore(&sb, len(res.Matches), count, "matches")
	}

	p.printBox("COMPANY RESOLUTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintNews outputs a summary of a news run and its top articles.
func (p *Printer) PrintNews(res *pipeline.NewsResult) {
	if res == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Company:  %s (id %d)\n", res.Company.Name, res.Company.ID)
	fmt.Fprintf(&sb, "Sources:  %s\n", strings.Join(res.Sources, ", "))
	fmt.Fprintf(&sb, "Fetched %d, kept %d, duplicates %d\n", res.OriginalCount, res.FilteredCount, res.DuplicatesRemoved)
	if res.Cached {
		sb.WriteString("Served from cache\n")
	} else {
		fmt.Fprintf(&sb, "Stored %d new in %s\n", res.Stored, res.ProcessingTime.Round(time.Millisecond))
	}
	for _, e := range res.SourceErrors {
		fmt.Fprintf(&sb, "⚠ %s: %s\n", e.Source, e.Code)
	}

	if len(res.Articles) > 0 {
		sb.WriteString("\n")
		count := min(len(res.Articles), maxItemsToShow)
		for i, a := range res.Articles[:count] {
			fmt.Fprintf(&sb, "#%d  %s\n", i+1, a.Title)
			fmt.Fprintf(&sb, "    %s, %s\n", a.SourceName, a.PublishedAt.Format("2006-01-02"))
		}
		writeMore(&sb, len(res.Articles), count, "articles")
	}

	p.printBox("COMPANY NEWS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintHighlights outputs extracted highlights with their provenance.
func (p *Printer) PrintHighlights(out *generation.HighlightOutcome) {
	if out == nil || out.Data == nil {
		return
	}

	var sb strings.Builder
	writeProvenance(&sb, out.PrimaryAttempt, out.FallbackAttempt, out.FinalQualityScore, out.Accepted)
	sb.WriteString("\n")
	for _, h := range out.Data.Highlights {
		fmt.Fprintf(&sb, "%s %s\n", strings.Repeat("★", h.Importance), h.Category)
		fmt.Fprintf(&sb, "  %s\n", h.Text)
	}

	p.printBox("HIGHLIGHTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPosts outputs generated social posts per platform.
func (p *Printer) PrintPosts(out *generation.SocialOutcome) {
	if out == nil || out.Data == nil {
		return
	}

	var sb strings.Builder
	writeProvenance(&sb, out.PrimaryAttempt, out.FallbackAttempt, out.FinalQualityScore, out.Accepted)
	for _, post := range out.Data.Posts {
		limit := post.Platform.CharLimit()
		fmt.Fprintf(&sb, "\n[%s] %d/%d chars\n", post.Platform, post.CharacterCount, limit)
		fmt.Fprintf(&sb, "%s\n", post.Content)
		if len(post.Hashtags) > 0 {
			fmt.Fprintf(&sb, "%s\n", strings.Join(post.Hashtags, " "))
		}
	}

	p.printBox("SOCIAL POSTS", strings.TrimSuffix(sb.String(), "\n"))
}

func writeProvenance(sb *strings.Builder, primary types.GenerationAttempt, fallback *types.GenerationAttempt, score float64, accepted bool) {
	provider := primary.Provider
	if fallback != nil {
		provider = fmt.Sprintf("%s (fallback from %s)", fallback.Provider, primary.Provider)
	}
	fmt.Fprintf(sb, "Provider: %s\n", provider)
	mark := "✓"
	if !accepted {
		mark = "✗ below threshold"
	}
	fmt.Fprintf(sb, "Quality:  %.1f %s\n", score, mark)
}

// PrintProviderHealth outputs one line per provider.
func (p *Printer) PrintProviderHealth(health []generation.ProviderHealth) {
	if len(health) == 0 {
		return
	}

	var sb strings.Builder
	for _, h := range health {
		status := "✅"
		if !h.Available {
			status = "❌"
		}
		fmt.Fprintf(&sb, "%s %-10s %s\n", status, h.Provider, h.Latency.Round(time.Millisecond))
		if h.LastError != "" {
			fmt.Fprintf(&sb, "   %s\n", h.LastError)
		}
	}

	p.printBox("PROVIDER HEALTH", strings.TrimSuffix(sb.String(), "\n"))
}
