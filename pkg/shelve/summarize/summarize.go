// Package summarize requests short summaries of document text from an
// OpenAI-compatible chat completion endpoint.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jamesainslie/shelve/pkg/shelve/logging"
)

const (
	// DefaultModel is the completion model used when none is configured.
	DefaultModel = "gpt-4o"

	// DefaultMaxTokens caps the length of a generated summary.
	DefaultMaxTokens = 1024

	// DefaultTimeout bounds a single completion request.
	DefaultTimeout = 60 * time.Second
)

const (
	systemPrompt = "You are an expert librarian who knows about every possible subject and is very adept at creating brief and insightful summaries of data provided to you."
	userPrefix   = "Write a summary of the following content: "

	// noContext stands in for an empty context. go-openai drops an empty
	// content field and the API rejects an assistant turn without one.
	noContext = "No additional context about this document was provided."
)

var (
	// ErrMissingAPIKey is returned when no API key was configured.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrRemoteService wraps every failure of the completion endpoint.
	ErrRemoteService = errors.New("summarization service failed")
)

// Config holds connection settings for the completion endpoint.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Client sends summarization requests. It is safe for sequential use.
type Client struct {
	api       *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
	logger    *logging.Logger
}

// NewClient builds a Client from cfg, filling unset fields with defaults.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	c := &Client{
		api:       openai.NewClientWithConfig(apiCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		logger:    logging.Get("summarize"),
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.maxTokens <= 0 {
		c.maxTokens = DefaultMaxTokens
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	return c, nil
}

// Messages builds the conversation sent for one document. The caller's
// context travels as a prior assistant turn ahead of the request.
func Messages(text, docContext string) []openai.ChatCompletionMessage {
	if strings.TrimSpace(docContext) == "" {
		docContext = noContext
	}
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleAssistant, Content: docContext},
		{Role: openai.ChatMessageRoleUser, Content: userPrefix + text},
	}
}

// Summarize returns the model's summary of text verbatim. docContext is
// optional background about the document.
func (c *Client) Summarize(ctx context.Context, text, docContext string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	c.logger.Debug("completion request", "model", c.model, "chars", len(text))

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  Messages(text, docContext),
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRemoteService, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", ErrRemoteService)
	}

	c.logger.Debug("completion finished", "model", c.model, "duration", time.Since(start))
	return resp.Choices[0].Message.Content, nil
}
