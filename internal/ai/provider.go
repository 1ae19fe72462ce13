package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnavailable = errors.New("ai provider unavailable")
	// ErrBadShape means the remote call succeeded but the response was
	// missing the expected fields.
	ErrBadShape = errors.New("ai response missing expected fields")
	// ErrBadPayload means the remote returned a body that could not be
	// decoded at all.
	ErrBadPayload = errors.New("ai response undecodable")
)

// Request is a single non-streaming completion request. The system turn is
// fixed per pipeline; the prompt is the single user turn.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

type Provider interface {
	Name() string
	Generate(ctx context.Context, model string, req Request) (string, error)
}

type ProviderFactory func(args interface{}) (Provider, error)

var registry = map[string]ProviderFactory{}

func Register(name string, factory ProviderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func NewProvider(name string, args interface{}) (Provider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
	return factory(args)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode ai provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode ai provider config: %w", err)
	}
	return nil
}
