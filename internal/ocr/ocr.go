// Package ocr abstracts text extraction from uploaded medical documents.
// An extractor that finds no text returns an empty string; the report
// pipeline treats that as a terminal failure and never fabricates findings.
package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type Extractor interface {
	Name() string
	ExtractText(ctx context.Context, data []byte, filename string) (string, error)
}

type Factory func(args interface{}) (Extractor, error)

var registry = map[string]Factory{}

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func New(name string, args interface{}) (Extractor, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ocr.provider is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ocr provider: %s", name)
	}
	return factory(args)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode ocr config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode ocr config: %w", err)
	}
	return nil
}
