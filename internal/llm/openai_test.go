package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAITestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultOpenAIConfig()
	cfg.BaseURL = server.URL + "/v1/"
	client, err := NewOpenAIClient(cfg, "sk-test")
	require.NoError(t, err)
	return client
}

func TestOpenAIClient_GenerateJSON(t *testing.T) {
	var got chatRequest
	client := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"` +
			"```json\\n{\\\"highlights\\\": []}\\n```" + `"}}]}`))
	})

	out, err := client.GenerateJSON(context.Background(), "extract", TierStandard)
	require.NoError(t, err)
	assert.Equal(t, `{"highlights": []}`, out)

	assert.Equal(t, "gpt-4o", got.Model)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 1)
	assert.Contains(t, got.Messages[0].Content, "Respond with a single JSON value")
}

func TestOpenAIClient_GenerateContent(t *testing.T) {
	var got chatRequest
	client := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"pong"}}]}`))
	})

	out, err := client.GenerateContent(context.Background(), "ping", TierLite)
	require.NoError(t, err)
	assert.Equal(t, "pong", out)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Nil(t, got.ResponseFormat)
}

func TestOpenAIClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"http status", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, "429"},
		{"api error body", http.StatusOK, `{"error":{"type":"invalid_request","message":"bad model"}}`, "bad model"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "empty response"},
		{"malformed", http.StatusOK, `not json`, "parse chat response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.GenerateContent(context.Background(), "ping", TierStandard)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
