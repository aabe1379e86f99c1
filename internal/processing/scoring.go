package processing

import (
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/jonathan/company-pulse/internal/sources"
	"github.com/jonathan/company-pulse/internal/types"
)

// Relevance weights.
const (
	titleHitWeight      = 15.0
	bodyHitWeight       = 3.0
	fullNameBonus       = 25.0
	credibleSourceBonus = 10.0
	businessWordBonus   = 5.0
	maxRelevance        = 100.0

	freshWindowHours  = 24.0
	freshBonus        = 15.0
	recentWindowHours = 48.0
	recentBonus       = 5.0
)

// Quality weights, on a 0-100 scale.
const (
	qualityBase         = 50.0
	titleSweetSpotBonus = 15.0
	bodySweetSpotBonus  = 20.0
	shortBodyBonus      = 10.0
	spamPenalty         = 30.0
	formattingBonus     = 5.0
)

var credibleSources = []string{
	"reuters", "bloomberg", "wsj", "wall street journal", "financial times", "ft.com",
	"cnbc", "associated press", "apnews", "bbc", "new york times", "nytimes",
	"forbes", "techcrunch", "the verge", "marketwatch", "barron", "business insider",
	"yahoo finance", "economist", "axios", "fortune", "businesswire", "prnewswire",
}

var businessKeywords = []string{
	"earnings", "revenue", "profit", "merger", "acquisition", "ipo", "partnership",
	"investment", "funding", "launch", "expansion", "layoffs", "ceo", "guidance",
	"dividend", "quarterly", "forecast", "lawsuit", "regulatory", "contract",
}

var spamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)click here`),
	regexp.MustCompile(`(?i)you won'?t believe`),
	regexp.MustCompile(`(?i)\bbuy now\b`),
	regexp.MustCompile(`(?i)limited time offer`),
	regexp.MustCompile(`(?i)sponsored content`),
	regexp.MustCompile(`(?i)\b(casino|viagra|giveaway)\b`),
	regexp.MustCompile(`!{3,}`),
}

// Relevance scores an article's topical fit to companyName on [0,100].
func Relevance(a types.RawArticle, companyName string, now time.Time) float64 {
	terms := sources.SearchTerms(companyName)
	score := float64(sources.CountTerms(a.Title, terms))*titleHitWeight +
		float64(sources.CountTerms(a.Body, terms))*bodyHitWeight

	name := strings.ToLower(strings.TrimSpace(companyName))
	text := strings.ToLower(a.Title + " " + a.Body)
	if name != "" && strings.Contains(text, name) {
		score += fullNameBonus
	}

	if IsCredibleSource(a.SourceName, a.URL) {
		score += credibleSourceBonus
	}

	score += RecencyBonus(a.AgeHours(now), !a.PublishedAt.IsZero())

	for _, kw := range businessKeywords {
		if containsWord(text, kw) {
			score += businessWordBonus
		}
	}

	return min(score, maxRelevance)
}

// RecencyBonus decays linearly from 15 to 5 over the first 24 hours, then
// from 5 to 0 over the next 48 hours.
func RecencyBonus(ageHours float64, known bool) float64 {
	switch {
	case !known:
		return 0
	case ageHours < freshWindowHours:
		return recentBonus + (freshBonus-recentBonus)*(1-ageHours/freshWindowHours)
	case ageHours < freshWindowHours+recentWindowHours:
		return recentBonus * (1 - (ageHours-freshWindowHours)/recentWindowHours)
	default:
		return 0
	}
}

// IsCredibleSource reports whether the source name or URL host is on the allow-list.
func IsCredibleSource(sourceName, rawURL string) bool {
	candidates := []string{strings.ToLower(sourceName)}
	if u, err := url.Parse(rawURL); err == nil {
		candidates = append(candidates, strings.ToLower(u.Hostname()))
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		for _, s := range credibleSources {
			if strings.Contains(c, s) {
				return true
			}
		}
	}
	return false
}

// Quality scores structural soundness on [0,1].
func Quality(a types.RawArticle) float64 {
	score := qualityBase

	titleLen := len([]rune(strings.TrimSpace(a.Title)))
	if titleLen >= 20 && titleLen <= 120 {
		score += titleSweetSpotBonus
	}

	bodyLen := len([]rune(strings.TrimSpace(a.Body)))
	switch {
	case bodyLen >= 200 && bodyLen <= 5000:
		score += bodySweetSpotBonus
	case bodyLen >= 50:
		score += shortBodyBonus
	}

	for _, p := range spamPatterns {
		if p.MatchString(a.Title) || p.MatchString(a.Body) {
			score -= spamPenalty
			break
		}
	}

	if r := []rune(strings.TrimSpace(a.Title)); len(r) > 0 && unicode.IsUpper(r[0]) {
		score += formattingBonus
	}
	if strings.HasPrefix(strings.ToLower(a.URL), "https://") {
		score += formattingBonus
	}
	if strings.TrimSpace(a.SourceName) != "" {
		score += formattingBonus
	}

	return min(max(score, 0), 100) / 100
}

// containsWord reports whether word occurs in lower-case text on word boundaries.
func containsWord(text, word string) bool {
	for start := 0; ; {
		i := strings.Index(text[start:], word)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(word)
		if (i == 0 || !isWordByte(text[i-1])) && (end == len(text) || !isWordByte(text[end])) {
			return true
		}
		start = i + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '_'
}
