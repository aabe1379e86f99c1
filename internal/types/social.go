//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
	"time"
)

// Platform is one of the fixed social platforms posts are generated for.
type Platform string

// Supported platforms.
const (
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
)

// PlatformSpec holds the static limits and tone signals of a platform.
type PlatformSpec struct {
	CharLimit   int
	MinHashtags int
	MaxHashtags int
	ToneSignals []string
}

var platformSpecs = map[Platform]PlatformSpec{
	PlatformTwitter: {
		CharLimit:   280,
		MinHashtags: 1,
		MaxHashtags: 3,
		ToneSignals: []string{"breaking", "just", "now", "today", "new", "!", "🚀", "📈"},
	},
	PlatformLinkedIn: {
		CharLimit:   3000,
		MinHashtags: 1,
		MaxHashtags: 5,
		ToneSignals: []string{"industry", "business", "growth", "strategy", "insights", "leadership", "professional", "market"},
	},
	PlatformFacebook: {
		CharLimit:   63206,
		MinHashtags: 0,
		MaxHashtags: 5,
		ToneSignals: []string{"you", "your", "we", "our", "community", "check out", "?", "!"},
	},
	PlatformInstagram: {
		CharLimit:   2200,
		MinHashtags: 3,
		MaxHashtags: 30,
		ToneSignals: []string{"✨", "📸", "💡", "🚀", "inspire", "story", "behind", "!"},
	},
}

// AllPlatforms returns the supported platforms in a stable order.
func AllPlatforms() []Platform {
	return []Platform{PlatformTwitter, PlatformLinkedIn, PlatformFacebook, PlatformInstagram}
}

// ParsePlatform converts a string into a Platform.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown platform: %q", s)
	}
	return p, nil
}

// Valid reports whether p is a supported platform.
func (p Platform) Valid() bool {
	_, ok := platformSpecs[p]
	return ok
}

// Spec returns the platform's static limits. Unknown platforms return the zero spec.
func (p Platform) Spec() PlatformSpec {
	return platformSpecs[p]
}

// CharLimit returns the platform's character ceiling.
func (p Platform) CharLimit() int {
	return platformSpecs[p].CharLimit
}

// SocialPost is generated content for one platform.
type SocialPost struct {
	Platform       Platform `json:"platform"`
	Content        string   `json:"content"`
	Hashtags       []string `json:"hashtags"`
	CharacterCount int      `json:"character_count"`
}

// SocialContent is the persisted form of a SocialPost, keyed by (ArticleID, Platform).
type SocialContent struct {
	ID             int64     `json:"id"`
	ArticleID      int64     `json:"article_id"`
	Platform       Platform  `json:"platform"`
	Content        string    `json:"content"`
	Hashtags       []string  `json:"hashtags"`
	CharacterCount int       `json:"character_count"`
	CreatedAt      time.Time `json:"created_at"`
}
