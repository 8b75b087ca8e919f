// Package llm provides the two language model capabilities of the pipeline: a binary relevance
// judgment of an item against a criterion and the rewrite of a criterion from user feedback.
// Both talk to an OpenAI-compatible chat completions endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/umputun/newswatch/pkg/config"
	"github.com/umputun/newswatch/pkg/domain"
)

// Client calls the LLM for judgments and refinements
type Client struct {
	client    *openai.Client
	config    config.LLMConfig
	judgeMsg  string
	refineMsg string
}

// NewClient creates a new LLM client
func NewClient(cfg config.LLMConfig) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}

	judgeMsg := cfg.Judge.SystemPrompt
	if judgeMsg == "" {
		judgeMsg = defaultJudgePrompt
	}
	refineMsg := cfg.Refine.SystemPrompt
	if refineMsg == "" {
		refineMsg = defaultRefinePrompt
	}

	return &Client{
		client:    openai.NewClientWithConfig(clientConfig),
		config:    cfg,
		judgeMsg:  judgeMsg,
		refineMsg: refineMsg,
	}
}

// complete sends one chat completion and returns the trimmed content of the first choice.
// Transport and API errors are capability-unavailable, an empty answer is a malformed response.
func (c *Client) complete(ctx context.Context, p config.PromptConfig, system, user string) (string, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Temperature: float32(p.Temperature),
		MaxTokens:   p.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("llm request failed with status %d: %w: %w", apiErr.HTTPStatusCode, domain.ErrCapabilityUnavailable, err)
		}
		return "", fmt.Errorf("llm request failed: %w: %w", domain.ErrCapabilityUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from llm: %w", domain.ErrMalformedResponse)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty response from llm: %w", domain.ErrMalformedResponse)
	}
	return content, nil
}
