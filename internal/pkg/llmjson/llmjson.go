// Package llmjson extracts JSON payloads from free-form language model
// output. Models wrap their JSON in prose or code fences more often than
// not, so every parse goes through fence extraction first.
package llmjson

import (
	"encoding/json"
	"fmt"
	"strings"
)

const fenceMarker = "```"

// ExtractPayload returns the content of the first fenced block if one
// exists, otherwise the trimmed input. A fence opened but never closed is
// reported as malformed rather than guessed at.
func ExtractPayload(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", fmt.Errorf("empty response text")
	}
	start := strings.Index(trimmed, fenceMarker)
	if start < 0 {
		return trimmed, nil
	}
	rest := trimmed[start+len(fenceMarker):]
	// Drop the info string ("json", "JSON", ...) on the opening fence line.
	if nl := strings.Index(rest, "\n"); nl >= 0 {
		rest = rest[nl+1:]
	} else {
		return "", fmt.Errorf("malformed code fence")
	}
	end := strings.Index(rest, fenceMarker)
	if end < 0 {
		return "", fmt.Errorf("unterminated code fence")
	}
	payload := strings.TrimSpace(rest[:end])
	if payload == "" {
		return "", fmt.Errorf("empty fenced block")
	}
	return payload, nil
}

// ParseObject parses a single JSON object out of model output.
func ParseObject(text string) (map[string]interface{}, error) {
	payload, err := ExtractPayload(text)
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, fmt.Errorf("parse object: %w", err)
	}
	return doc, nil
}

// ParseList parses a JSON array of objects out of model output.
func ParseList(text string) ([]map[string]interface{}, error) {
	payload, err := ExtractPayload(text)
	if err != nil {
		return nil, err
	}
	var items []map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, fmt.Errorf("parse list: %w", err)
	}
	return items, nil
}
