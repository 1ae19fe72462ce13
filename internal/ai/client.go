package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Sentinel texts returned in place of generated content when a call fails.
// They flow through the pipeline like any other model output; downstream
// parsing turns them into error documents instead of crashing the request.
const (
	ErrTextUnreachable    = "Error: could not reach language model service."
	ErrTextBadShape       = "Error: invalid response structure from language model."
	ErrTextBadPayload     = "Error: failed to decode language model response."
	ErrTextInvalidRequest = "Error: invalid generation request."
)

// IsErrorText reports whether a generation result is one of the sentinel
// failure texts rather than real model output.
func IsErrorText(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "Error:")
}

// Client issues single synchronous completion calls against one configured
// provider and model. It never returns an error: every failure mode is
// collapsed into a sentinel text so one bad call cannot abort a pipeline.
type Client struct {
	provider Provider
	model    string
	system   string
	timeout  time.Duration
}

func NewClient(provider Provider, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		provider: provider,
		model:    model,
		system:   "You are a helpful assistant.",
		timeout:  timeout,
	}
}

func (c *Client) ProviderName() string {
	return c.provider.Name()
}

func (c *Client) ModelName() string {
	return c.model
}

// Generate runs one bounded completion call. Temperature is expected in
// [0,2]; maxTokens must be positive.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) string {
	logger := logutil.GetLogger(ctx).With(
		zap.String("provider", c.provider.Name()),
		zap.String("model", c.model),
	)
	if strings.TrimSpace(prompt) == "" || maxTokens <= 0 {
		logger.Error("rejecting generation call", zap.Int("max_tokens", maxTokens))
		return ErrTextInvalidRequest
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.provider.Generate(ctx, c.model, Request{
		System:      c.system,
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	switch {
	case err == nil:
		return strings.TrimSpace(text)
	case errors.Is(err, ErrBadShape):
		logger.Error("model response missing expected fields", zap.Error(err))
		return ErrTextBadShape
	case errors.Is(err, ErrBadPayload):
		logger.Error("model response body undecodable", zap.Error(err))
		return ErrTextBadPayload
	default:
		logger.Error("generation call failed", zap.Error(err))
		return ErrTextUnreachable
	}
}
