package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const defaultLMStudioBaseURL = "http://127.0.0.1:1234/v1"

type lmStudioConfig struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
}

// lmStudioProvider speaks the OpenAI-compatible chat completions protocol,
// which covers LM Studio, OpenAI itself and most local inference servers.
type lmStudioProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []chatMsg `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
}

type chatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *lmStudioProvider) Name() string {
	return "lmstudio"
}

func (p *lmStudioProvider) Generate(ctx context.Context, model string, req Request) (string, error) {
	endpoint := strings.TrimRight(p.baseURL, "/") + "/chat/completions"
	reqBody := chatCompletionRequest{
		Model: model,
		Messages: []chatMsg{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stream:      false,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("completion request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	var out chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if len(out.Choices) == 0 {
		return "", ErrBadShape
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func createLMStudioFactory(args interface{}) (Provider, error) {
	cfg := &lmStudioConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = os.Getenv("LLM_BASE_URL")
	}
	if baseURL == "" {
		baseURL = defaultLMStudioBaseURL
	}
	return &lmStudioProvider{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		client:  http.DefaultClient,
	}, nil
}

func init() {
	Register("lmstudio", createLMStudioFactory)
	Register("openai", createLMStudioFactory)
}
