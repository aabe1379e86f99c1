package quality

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/company-pulse/internal/types"
)

// Social deductions.
const (
	missingPlatformPenalty     = 25.0
	charLimitPenalty           = 20.0
	shortContentPenalty        = 10.0
	postMissingCompany         = 10.0
	malformedHashtagPenalty    = 5.0
	tooManyHashtagsPenalty     = 10.0
	tooFewHashtagsPenalty      = 5.0
	missingTonePenalty         = 5.0
	characterCountMismatch     = 5.0
	unrequestedPlatformPenalty = 0.0

	// MinPostLength is the shortest acceptable post body.
	MinPostLength = 30
	// MaxHashtagLength bounds a single hashtag including '#'.
	MaxHashtagLength = 30
)

var hashtagPattern = regexp.MustCompile(`^#[A-Za-z0-9_]+$`)

// ValidHashtag reports whether tag is well formed and short enough.
func ValidHashtag(tag string) bool {
	return hashtagPattern.MatchString(tag) && utf8.RuneCountInString(tag) <= MaxHashtagLength
}

// ValidateSocialContent scores posts against the requested platforms.
func (v *Validator) ValidateSocialContent(resp *types.SocialResponse, requested []types.Platform, companyName string) *Report {
	s := newScorer()
	if resp == nil || len(resp.Posts) == 0 {
		s.deduct("empty", SeverityError, 100, nil, "no posts returned")
		return s.report(v.socialThreshold())
	}

	for _, p := range requested {
		if _, ok := resp.Post(p); !ok {
			s.deduct("missing_platform", SeverityError, missingPlatformPenalty, nil,
				"missing post for %s", p)
		}
	}

	wanted := make(map[types.Platform]bool, len(requested))
	for _, p := range requested {
		wanted[p] = true
	}

	company := strings.ToLower(strings.TrimSpace(companyName))
	for i, post := range resp.Posts {
		if !wanted[post.Platform] {
			s.deduct("unrequested_platform", SeverityWarning, unrequestedPlatformPenalty, intPtr(i),
				"post %d targets unrequested platform %q", i+1, post.Platform)
			continue
		}
		v.checkPost(s, i, post, company, companyName)
	}

	return s.report(v.socialThreshold())
}

func (v *Validator) checkPost(s *scorer, i int, post types.SocialPost, company, companyName string) {
	spec := post.Platform.Spec()
	count := utf8.RuneCountInString(post.Content)
	lower := strings.ToLower(post.Content)

	if count > spec.CharLimit {
		s.deduct("char_limit", SeverityError, charLimitPenalty, intPtr(i),
			"%s post exceeds %d characters (%d)", post.Platform, spec.CharLimit, count)
	}
	if post.CharacterCount != count {
		s.deduct("character_count", SeverityWarning, characterCountMismatch, intPtr(i),
			"%s post reports %d characters but has %d", post.Platform, post.CharacterCount, count)
	}
	if count < MinPostLength {
		s.deduct("content_length", SeverityWarning, shortContentPenalty, intPtr(i),
			"%s post shorter than %d characters", post.Platform, MinPostLength)
	}
	if company != "" && !mentionsName(lower, company) {
		s.deduct("company_reference", SeverityWarning, postMissingCompany, intPtr(i),
			"%s post does not mention %s", post.Platform, companyName)
	}

	for _, tag := range post.Hashtags {
		if !ValidHashtag(tag) {
			s.deduct("hashtag_format", SeverityWarning, malformedHashtagPenalty, intPtr(i),
				"%s post has malformed hashtag %q", post.Platform, tag)
		}
	}
	switch n := len(post.Hashtags); {
	case n > spec.MaxHashtags:
		s.deduct("hashtag_count", SeverityWarning, tooManyHashtagsPenalty, intPtr(i),
			"%s post has %d hashtags, max %d", post.Platform, n, spec.MaxHashtags)
	case n < spec.MinHashtags:
		s.deduct("hashtag_count", SeverityWarning, tooFewHashtagsPenalty, intPtr(i),
			"%s post has %d hashtags, min %d", post.Platform, n, spec.MinHashtags)
	}

	if !hasToneSignal(lower, spec.ToneSignals) {
		s.deduct("tone", SeverityWarning, missingTonePenalty, intPtr(i),
			"%s post lacks platform tone", post.Platform)
	}
}

func hasToneSignal(lower string, signals []string) bool {
	if len(signals) == 0 {
		return true
	}
	for _, sig := range signals {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}
