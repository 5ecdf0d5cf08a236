package summarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrompt(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantErr     bool
		temperature float32
		maxTokens   int
	}{
		{"embedded", string(defaultPrompt), false, 0.2, 300},
		{"defaults", "system: hi", false, 0.2, 300},
		{"custom style", "system: hi\nstyle:\n  temperature: 0.7\n  max_tokens: 50", false, 0.7, 50},
		{"missing system", "style:\n  temperature: 0.7", true, 0, 0},
		{"invalid yaml", "system: [", true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := LoadPrompt([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.temperature, p.Style.Temperature)
			assert.Equal(t, tt.maxTokens, p.Style.MaxTokens)
		})
	}
}

func TestNew(t *testing.T) {
	_, err := New("", "gpt", "")
	assert.Error(t, err)
	_, err = New("key", "", "")
	assert.Error(t, err)

	c, err := New("key", "gpt-test", "")
	require.NoError(t, err)
	assert.Equal(t, "gpt-test", c.Model())
}

func TestSummarize(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "  Renames a to b.\n"},
			}},
		})
	}))
	defer srv.Close()

	c, err := New("key", "gpt-test", srv.URL+"/")
	require.NoError(t, err)

	summary, err := c.Summarize(context.Background(), "--- a/x\n+++ b/x\n-a\n+b\n")
	require.NoError(t, err)
	assert.Equal(t, "Renames a to b.", summary)

	assert.Equal(t, "gpt-test", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "--- a/x\n+++ b/x\n-a\n+b\n", got.Messages[1].Content)
}

func TestSummarizeErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	}))
	defer srv.Close()

	c, err := New("key", "gpt-test", srv.URL)
	require.NoError(t, err)

	_, err = c.Summarize(context.Background(), "  \n")
	assert.ErrorContains(t, err, "diff is empty")

	_, err = c.Summarize(context.Background(), "+x\n")
	assert.ErrorContains(t, err, "no choices")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short\n", truncate("short\n", 100))

	long := strings.Repeat("line\n", 10)
	out := truncate(long, 12)
	assert.Equal(t, "line\nline\n\n[diff truncated]\n", out)
}
