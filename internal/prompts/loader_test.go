package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	ClearCache()

	prompt, err := Get(HighlightsFile, "extract-highlights")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.CompanyName}}")

	_, err = Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")

	_, err = Get(SocialFile, "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() { MustGet("nonexistent.json", "x") })
	assert.NotPanics(t, func() { MustGet(SocialFile, "generate-posts") })
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]string
		want     string
	}{
		{"fills all", "News about {{.Company}} on {{.Platform}}", map[string]string{"Company": "Apple", "Platform": "twitter"}, "News about Apple on twitter"},
		{"repeated key", "{{.X}}-{{.X}}", map[string]string{"X": "a"}, "a-a"},
		{"no placeholders", "static", map[string]string{"X": "a"}, "static"},
		{"missing value kept", "Hello {{.Name}}", map[string]string{}, "Hello {{.Name}}"},
		{"value containing braces", "{{.A}}", map[string]string{"A": "{{.B}}"}, "{{.B}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.template, tt.data))
		})
	}
}

func TestRender(t *testing.T) {
	ClearCache()

	out, err := Render(HighlightsFile, "extract-highlights", map[string]string{
		"CompanyName":   "Apple",
		"MaxHighlights": "5",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "about Apple")
	assert.Contains(t, out, "up to 5")

	_, err = Render(HighlightsFile, "extract-highlights", map[string]string{"CompanyName": "Apple"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MaxHighlights")
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, Placeholders("{{.B}} {{.A}} {{.B}}"))
	assert.Empty(t, Placeholders("none"))
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List(SocialFile)
	require.NoError(t, err)
	assert.Contains(t, keys, "generate-posts")
	assert.Contains(t, keys, "platform-rule")
	assert.IsIncreasing(t, keys)
}
