package generation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/company-pulse/internal/llm"
	"github.com/jonathan/company-pulse/internal/types"
)

type fakeClient struct {
	reply   string
	err     error
	prompts []string
	tiers   []llm.ModelTier
}

func (c *fakeClient) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	c.prompts = append(c.prompts, prompt)
	c.tiers = append(c.tiers, tier)
	return c.reply, c.err
}

func (c *fakeClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return c.GenerateContent(ctx, prompt, tier)
}

func (c *fakeClient) GetModel(tier llm.ModelTier) string { return "fake-" + string(tier) }
func (c *fakeClient) Close() error                       { return nil }

func TestLLMProvider_ExtractHighlights(t *testing.T) {
	client := &fakeClient{reply: "```json\n" + `{"highlights":[
		{"text":"Apple reported revenue of $120B, up 8%","importance":9,"category":"Financial"},
		{"text":"  Apple   opened a plant in Texas ","importance":0,"category":"manufacturing"},
		{"text":"   ","importance":2,"category":"market"},
		{"text":"Apple named a new CFO","importance":2.4,"category":"strategic"}
	]}` + "\n```"}
	p := NewLLMProvider("gemini", client, 0)

	resp, err := p.ExtractHighlights(context.Background(), types.HighlightRequest{
		CompanyName:   "Apple",
		Title:         "Apple quarter",
		Content:       "Apple reported revenue of $120B for the quarter.",
		MaxHighlights: 3,
	})
	require.NoError(t, err)

	require.Len(t, resp.Highlights, 3)
	assert.Equal(t, types.Highlight{Text: "Apple reported revenue of $120B, up 8%", Importance: 5, Category: types.CategoryFinancial}, resp.Highlights[0])
	assert.Equal(t, types.Highlight{Text: "Apple opened a plant in Texas", Importance: 3, Category: types.CategoryGeneral}, resp.Highlights[1])
	assert.Equal(t, 2, resp.Highlights[2].Importance)
	assert.Equal(t, "gemini", resp.Provider)
	assert.Equal(t, "fake-standard", resp.Model)

	require.Len(t, client.prompts, 1)
	prompt := client.prompts[0]
	assert.Contains(t, prompt, "about Apple")
	assert.Contains(t, prompt, "up to 3 key business highlights")
	assert.Contains(t, prompt, "Title: Apple quarter")
	assert.NotContains(t, prompt, "{{.")
}

func TestLLMProvider_GenerateSocialContent(t *testing.T) {
	long := strings.Repeat("Apple posts record revenue and raises guidance for the year. ", 10)
	client := &fakeClient{reply: `{"posts":[
		{"platform":"Twitter","content":"` + long + `","hashtags":["AAPL","#Earnings","#Tech","#More"]},
		{"platform":"twitter","content":"duplicate","hashtags":[]},
		{"platform":"myspace","content":"ignored"},
		{"platform":"linkedin","content":"Apple delivered strong growth this quarter.","hashtags":["#Business"]}
	]}`}
	p := NewLLMProvider("openai", client, 1)

	resp, err := p.GenerateSocialContent(context.Background(), types.SocialRequest{
		CompanyName:  "Apple",
		ArticleTitle: "Apple beats estimates",
		ArticleURL:   "https://example.com/apple",
		Highlights:   []types.Highlight{{Text: "Apple reported record revenue", Importance: 5, Category: types.CategoryFinancial}},
		Platforms:    []types.Platform{types.PlatformLinkedIn, types.PlatformTwitter, types.PlatformInstagram},
	})
	require.NoError(t, err)

	require.Len(t, resp.Posts, 2)
	assert.Equal(t, types.PlatformLinkedIn, resp.Posts[0].Platform)
	tweet := resp.Posts[1]
	assert.Equal(t, types.PlatformTwitter, tweet.Platform)
	assert.LessOrEqual(t, tweet.CharacterCount, 280)
	assert.Equal(t, []string{"#AAPL", "#Earnings", "#Tech"}, tweet.Hashtags)

	prompt := client.prompts[0]
	assert.Contains(t, prompt, "twitter: at most 280 characters")
	assert.Contains(t, prompt, `("Apple beats estimates")`)
	assert.Contains(t, prompt, "Article URL: https://example.com/apple")
	assert.Contains(t, prompt, "[financial, importance 5] Apple reported record revenue")
}

func TestLLMProvider_Errors(t *testing.T) {
	req := types.HighlightRequest{CompanyName: "Apple", Content: "Apple reported record revenue for the quarter."}

	tests := []struct {
		name     string
		client   *fakeClient
		wantCode string
	}{
		{"client failure", &fakeClient{err: errors.New("503 unavailable")}, CodeProviderError},
		{"deadline", &fakeClient{err: context.DeadlineExceeded}, CodeTimeout},
		{"schema mismatch", &fakeClient{reply: `{"items":[]}`}, CodeInvalidResponse},
		{"not json", &fakeClient{reply: "I cannot help with that"}, CodeInvalidResponse},
		{"only blank highlights", &fakeClient{reply: `{"highlights":[{"text":"  "}]}`}, CodeInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLLMProvider("anthropic", tt.client, 0).ExtractHighlights(context.Background(), req)
			var pe *ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.wantCode, pe.Code)
			assert.Equal(t, "anthropic", pe.Provider)
		})
	}
}

func TestLLMProvider_NotConfigured(t *testing.T) {
	p := NewLLMProvider("anthropic", nil, 0)
	assert.False(t, p.Available())

	_, err := p.GenerateSocialContent(context.Background(), types.SocialRequest{})
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, CodeNotConfigured, pe.Code)
	assert.Error(t, p.CheckHealth(context.Background()))
	assert.NoError(t, p.Close())
}

func TestLLMProvider_CheckHealthUsesLiteTier(t *testing.T) {
	client := &fakeClient{reply: "OK"}
	p := NewLLMProvider("gemini", client, 0).WithTier(llm.TierAdvanced)

	require.NoError(t, p.CheckHealth(context.Background()))
	assert.Equal(t, []llm.ModelTier{llm.TierLite}, client.tiers)
}
