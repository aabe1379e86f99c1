package generation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/company-pulse/internal/quality"
	"github.com/jonathan/company-pulse/internal/types"
)

const ellipsis = "…"

// EnforcePlatformLimits fits a post to its platform: content is cut to the
// character ceiling, hashtags are normalized, filtered and capped, and
// CharacterCount is recomputed.
func EnforcePlatformLimits(post types.SocialPost) types.SocialPost {
	spec := post.Platform.Spec()

	content := strings.TrimSpace(post.Content)
	if spec.CharLimit > 0 {
		content = truncateWords(content, spec.CharLimit)
	}

	post.Content = content
	post.CharacterCount = utf8.RuneCountInString(content)
	post.Hashtags = cleanHashtags(post.Hashtags, spec.MaxHashtags)
	return post
}

// truncateWords shortens s to at most limit runes, cutting at a word boundary
// when one exists in the back half and marking the cut with an ellipsis.
func truncateWords(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 1 {
		return string(runes[:max(limit, 0)])
	}

	cut := runes[:limit-1]
	for i := len(cut) - 1; i > len(cut)/2; i-- {
		if unicode.IsSpace(cut[i]) {
			cut = cut[:i]
			break
		}
	}
	return strings.TrimRightFunc(string(cut), func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(",;:-", r)
	}) + ellipsis
}

func cleanHashtags(tags []string, limit int) []string {
	out := make([]string, 0, len(tags))
	if limit <= 0 {
		return out
	}
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		key := strings.ToLower(tag)
		if !quality.ValidHashtag(tag) || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
		if len(out) == limit {
			break
		}
	}
	return out
}
