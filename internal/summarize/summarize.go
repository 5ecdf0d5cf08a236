// Package summarize asks an OpenAI-compatible chat model to describe a diff.
package summarize

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"gopkg.in/yaml.v3"
)

//go:embed prompt.yaml
var defaultPrompt []byte

// maxDiffBytes bounds the diff sent to the model.
const maxDiffBytes = 24 * 1024

// requestTimeout bounds a single completion request.
const requestTimeout = 60 * time.Second

// Prompt is the system instruction and sampling style of a summary request.
type Prompt struct {
	System string `yaml:"system"`
	Style  struct {
		Temperature float32 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"style"`
}

// LoadPrompt parses a YAML prompt and fills in missing style values.
func LoadPrompt(data []byte) (Prompt, error) {
	var p Prompt
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to parse prompt: %w", err)
	}
	if strings.TrimSpace(p.System) == "" {
		return p, errors.New("prompt has no system instruction")
	}
	if p.Style.Temperature <= 0 {
		p.Style.Temperature = 0.2
	}
	if p.Style.MaxTokens <= 0 {
		p.Style.MaxTokens = 300
	}
	return p, nil
}

// Client summarizes diffs with one chat model.
type Client struct {
	api    *openai.Client
	model  string
	prompt Prompt
}

// New creates a client for model. An empty baseURL uses the OpenAI API.
func New(apiKey, model, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("an API key is required")
	}
	if model == "" {
		return nil, errors.New("a model is required")
	}
	prompt, err := LoadPrompt(defaultPrompt)
	if err != nil {
		return nil, err
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{api: openai.NewClientWithConfig(config), model: model, prompt: prompt}, nil
}

// Model returns the chat model name.
func (c *Client) Model() string {
	return c.model
}

// Summarize returns a short description of diff.
func (c *Client) Summarize(ctx context.Context, diff string) (string, error) {
	if strings.TrimSpace(diff) == "" {
		return "", errors.New("nothing to summarize: the diff is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.prompt.Style.Temperature,
		MaxTokens:   c.prompt.Style.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: truncate(diff, maxDiffBytes)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// truncate cuts diff at the last line break before limit.
func truncate(diff string, limit int) string {
	if len(diff) <= limit {
		return diff
	}
	cut := diff[:limit]
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		cut = cut[:i+1]
	}
	return cut + "\n[diff truncated]\n"
}
