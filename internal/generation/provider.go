// Package generation extracts highlights and writes social posts through
// interchangeable text-generation providers, falling back between them by quality.
package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/company-pulse/internal/llm"
	"github.com/jonathan/company-pulse/internal/prompts"
	"github.com/jonathan/company-pulse/internal/schemas"
	"github.com/jonathan/company-pulse/internal/types"
)

// Provider is one generation backend.
type Provider interface {
	Name() string
	// Priority orders providers with equal health; lower runs first.
	Priority() int
	// Available reports whether the provider has the credentials it needs.
	Available() bool
	ExtractHighlights(ctx context.Context, req types.HighlightRequest) (*types.HighlightResponse, error)
	GenerateSocialContent(ctx context.Context, req types.SocialRequest) (*types.SocialResponse, error)
	CheckHealth(ctx context.Context) error
}

// DefaultMaxHighlights is used when a request leaves MaxHighlights unset.
const DefaultMaxHighlights = 5

// maxArticleRunes bounds the article text sent to a model.
const maxArticleRunes = 12000

// LLMProvider adapts an llm.Client into a Provider.
type LLMProvider struct {
	name     string
	client   llm.Client
	tier     llm.ModelTier
	priority int
}

// NewLLMProvider wraps client. A nil client yields a provider that is never available.
func NewLLMProvider(name string, client llm.Client, priority int) *LLMProvider {
	return &LLMProvider{
		name:     name,
		client:   client,
		tier:     llm.TierStandard,
		priority: priority,
	}
}

// WithTier returns a copy that uses tier for generation calls.
func (p *LLMProvider) WithTier(tier llm.ModelTier) *LLMProvider {
	next := *p
	next.tier = tier
	return &next
}

// Name returns the provider id.
func (p *LLMProvider) Name() string { return p.name }

// Priority returns the configured priority.
func (p *LLMProvider) Priority() int { return p.priority }

// Available reports whether a client is configured.
func (p *LLMProvider) Available() bool { return p.client != nil }

// Close releases the underlying client.
func (p *LLMProvider) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

// CheckHealth sends a minimal prompt on the lite tier.
func (p *LLMProvider) CheckHealth(ctx context.Context) error {
	if p.client == nil {
		return p.notConfigured()
	}
	prompt, err := prompts.Get(prompts.HighlightsFile, "health-check")
	if err != nil {
		return err
	}
	if _, err := p.client.GenerateContent(ctx, prompt, llm.TierLite); err != nil {
		return asProviderError(p.name, err)
	}
	return nil
}

type rawHighlight struct {
	Text       string  `json:"text"`
	Importance float64 `json:"importance"`
	Category   string  `json:"category"`
}

type rawPost struct {
	Platform string   `json:"platform"`
	Content  string   `json:"content"`
	Hashtags []string `json:"hashtags"`
}

// ExtractHighlights asks the model for highlights and coerces them into range.
func (p *LLMProvider) ExtractHighlights(ctx context.Context, req types.HighlightRequest) (*types.HighlightResponse, error) {
	if p.client == nil {
		return nil, p.notConfigured()
	}

	prompt, err := highlightPrompt(req)
	if err != nil {
		return nil, err
	}

	var out struct {
		Highlights []rawHighlight `json:"highlights"`
	}
	if err := p.generate(ctx, prompt, schemas.Highlights, &out); err != nil {
		return nil, err
	}

	highlights := normalizeHighlights(out.Highlights, maxHighlights(req))
	if len(highlights) == 0 {
		return nil, &ProviderError{Provider: p.name, Code: CodeInvalidResponse, Message: "no usable highlights"}
	}

	return &types.HighlightResponse{
		Highlights: highlights,
		Provider:   p.name,
		Model:      p.client.GetModel(p.tier),
	}, nil
}

// GenerateSocialContent asks the model for posts and enforces platform limits.
func (p *LLMProvider) GenerateSocialContent(ctx context.Context, req types.SocialRequest) (*types.SocialResponse, error) {
	if p.client == nil {
		return nil, p.notConfigured()
	}

	prompt, err := socialPrompt(req)
	if err != nil {
		return nil, err
	}

	var out struct {
		Posts []rawPost `json:"posts"`
	}
	if err := p.generate(ctx, prompt, schemas.SocialPosts, &out); err != nil {
		return nil, err
	}

	posts := collectPosts(out.Posts, req.Platforms)
	if len(posts) == 0 {
		return nil, &ProviderError{Provider: p.name, Code: CodeInvalidResponse, Message: "no posts for requested platforms"}
	}

	return &types.SocialResponse{
		Posts:    posts,
		Provider: p.name,
		Model:    p.client.GetModel(p.tier),
	}, nil
}

func (p *LLMProvider) generate(ctx context.Context, prompt, schema string, out any) error {
	text, err := p.client.GenerateJSON(ctx, prompt, p.tier)
	if err != nil {
		return asProviderError(p.name, err)
	}

	text = llm.CleanJSONBlock(text)
	if err := schemas.Validate(schema, text); err != nil {
		return &ProviderError{Provider: p.name, Code: CodeInvalidResponse, Message: "response does not match schema", Cause: err}
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return &ProviderError{Provider: p.name, Code: CodeInvalidResponse, Message: "malformed JSON", Cause: err}
	}
	return nil
}

func (p *LLMProvider) notConfigured() error {
	return &ProviderError{Provider: p.name, Code: CodeNotConfigured, Message: "no API key configured"}
}

func maxHighlights(req types.HighlightRequest) int {
	if req.MaxHighlights <= 0 {
		return DefaultMaxHighlights
	}
	return req.MaxHighlights
}

func highlightPrompt(req types.HighlightRequest) (string, error) {
	description, err := prompts.Render(prompts.HighlightsFile, "extract-highlights", map[string]string{
		"CompanyName":   req.CompanyName,
		"MaxHighlights": fmt.Sprint(maxHighlights(req)),
	})
	if err != nil {
		return "", err
	}

	fieldDoc := strings.Join([]string{
		"text: " + prompts.MustGet(prompts.HighlightsFile, "field-text"),
		"importance: " + prompts.MustGet(prompts.HighlightsFile, "field-importance"),
		"category: " + prompts.MustGet(prompts.HighlightsFile, "field-category"),
	}, "; ")

	schema := llm.ExtractionSchema{
		Name:        "Highlights",
		Description: description,
		Fields: []llm.SchemaField{{
			Name:        "highlights",
			Type:        `[{"text": "string", "importance": 1, "category": "string"}]`,
			Description: fieldDoc,
			Required:    true,
		}},
		Rules: []string{
			prompts.MustGet(prompts.HighlightsFile, "rule-grounded"),
			prompts.MustGet(prompts.HighlightsFile, "rule-no-boilerplate"),
		},
		InputLabel: "Article",
	}

	var input strings.Builder
	if req.Title != "" {
		fmt.Fprintf(&input, "Title: %s\n\n", req.Title)
	}
	input.WriteString(clip(req.Content, maxArticleRunes))

	return llm.BuildExtractionPrompt(schema, input.String()), nil
}

func socialPrompt(req types.SocialRequest) (string, error) {
	names := make([]string, len(req.Platforms))
	rules := make([]string, len(req.Platforms))
	for i, platform := range req.Platforms {
		spec := platform.Spec()
		names[i] = string(platform)
		rule, err := prompts.Render(prompts.SocialFile, "platform-rule", map[string]string{
			"Platform":    string(platform),
			"CharLimit":   fmt.Sprint(spec.CharLimit),
			"MinHashtags": fmt.Sprint(spec.MinHashtags),
			"MaxHashtags": fmt.Sprint(spec.MaxHashtags),
		})
		if err != nil {
			return "", err
		}
		rules[i] = rule
	}

	titleClause := ""
	if req.ArticleTitle != "" {
		titleClause = fmt.Sprintf(" (%q)", req.ArticleTitle)
	}

	description, err := prompts.Render(prompts.SocialFile, "generate-posts", map[string]string{
		"CompanyName":   req.CompanyName,
		"TitleClause":   titleClause,
		"Platforms":     strings.Join(names, ", "),
		"PlatformRules": strings.Join(rules, "\n"),
	})
	if err != nil {
		return "", err
	}

	schema := llm.ExtractionSchema{
		Name:        "SocialPosts",
		Description: description,
		Fields: []llm.SchemaField{{
			Name:        "posts",
			Type:        `[{"platform": "string", "content": "string", "hashtags": ["#Tag"]}]`,
			Description: prompts.MustGet(prompts.SocialFile, "field-posts"),
			Required:    true,
		}},
		Rules: []string{
			prompts.MustGet(prompts.SocialFile, "rule-hashtags"),
			prompts.MustGet(prompts.SocialFile, "rule-link"),
			prompts.MustGet(prompts.SocialFile, "rule-highlights"),
		},
		InputLabel: "Highlights",
	}

	var input strings.Builder
	if req.ArticleURL != "" {
		fmt.Fprintf(&input, "Article URL: %s\n", req.ArticleURL)
	}
	for _, h := range req.Highlights {
		fmt.Fprintf(&input, "- [%s, importance %d] %s\n", h.Category, h.Importance, h.Text)
	}

	return llm.BuildExtractionPrompt(schema, input.String()), nil
}

func normalizeHighlights(raw []rawHighlight, limit int) []types.Highlight {
	out := make([]types.Highlight, 0, len(raw))
	for _, r := range raw {
		text := strings.Join(strings.Fields(r.Text), " ")
		if text == "" {
			continue
		}

		importance := int(math.Round(r.Importance))
		switch {
		case importance == 0:
			importance = 3
		case importance < types.HighlightMinImportance:
			importance = types.HighlightMinImportance
		case importance > types.HighlightMaxImportance:
			importance = types.HighlightMaxImportance
		}

		category := types.Category(strings.ToLower(strings.TrimSpace(r.Category)))
		if !category.Valid() {
			category = types.CategoryGeneral
		}

		out = append(out, types.Highlight{
			Text:       truncateWords(text, types.HighlightMaxLength),
			Importance: importance,
			Category:   category,
		})
		if len(out) == limit {
			break
		}
	}
	return out
}

// collectPosts keeps the first post per requested platform, in request order.
func collectPosts(raw []rawPost, requested []types.Platform) []types.SocialPost {
	byPlatform := make(map[types.Platform]rawPost)
	for _, r := range raw {
		platform, err := types.ParsePlatform(r.Platform)
		if err != nil {
			continue
		}
		if _, seen := byPlatform[platform]; !seen {
			byPlatform[platform] = r
		}
	}

	posts := make([]types.SocialPost, 0, len(requested))
	for _, platform := range requested {
		r, ok := byPlatform[platform]
		if !ok || strings.TrimSpace(r.Content) == "" {
			continue
		}
		posts = append(posts, EnforcePlatformLimits(types.SocialPost{
			Platform: platform,
			Content:  r.Content,
			Hashtags: r.Hashtags,
		}))
	}
	return posts
}

func clip(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
