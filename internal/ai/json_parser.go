package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Pre-compiled cleanup patterns.
var (
	// Matches ```json\n[...]\n``` and the variants models produce without
	// newlines or with a different language tag.
	codeFenceRegex = regexp.MustCompile("(?s)`{3}(?:json|javascript|js)?\\s*\\n?(.*?)\\n?`{3}")

	trailingCommaRegex     = regexp.MustCompile(`,(\s*[}\]])`)
	singleLineCommentRegex = regexp.MustCompile(`(?m)^\s*//.*$`)
	multiLineCommentRegex  = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// MaxResponseSize bounds the model text ParseArray will look at.
const MaxResponseSize = 10 * 1024 * 1024

// ErrNotArray is returned when the response holds no JSON array.
var ErrNotArray = errors.New("response is not a JSON array")

// ParseArray extracts a JSON array from free-form model output.
//
// Elements are returned loosely typed (map[string]any, string, json.Number,
// bool, nil, []any) and must be checked by the caller. Numbers are kept as
// json.Number so registry codes do not pick up float formatting.
//
// Strategy sequence, stopping at the first that yields an array:
//  1. Direct parse
//  2. Strip markdown code fences
//  3. Remove trailing commas and comments
//  4. Take the span from the first '[' to the last ']' when the text is
//     prose around an array (not an object or string that contains one)
func ParseArray(text string) ([]any, error) {
	if len(text) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeds size limit (%d > %d bytes)", len(text), MaxResponseSize)
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyResponse
	}

	candidates := []string{trimmed}
	if unfenced := stripCodeFences(trimmed); unfenced != trimmed {
		candidates = append(candidates, unfenced)
	}
	cleaned := cleanupJSON(candidates[len(candidates)-1])
	candidates = append(candidates, cleaned)
	if span := arraySpan(cleaned); span != "" && span != cleaned && !startsWithScalarOrObject(cleaned) {
		candidates = append(candidates, span)
	}

	var lastErr error
	for i, candidate := range candidates {
		arr, err := decodeArray(candidate)
		if err == nil {
			if i > 0 {
				slog.Debug("parsed oracle response after cleanup", "strategy", i+1)
			}
			return arr, nil
		}
		lastErr = err
	}

	slog.Debug("oracle response is not a JSON array",
		"error", lastErr, "textPreview", truncate(trimmed, 100))
	if errors.Is(lastErr, ErrNotArray) {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %v", ErrNotArray, lastErr)
}

// decodeArray parses s as exactly one JSON value that must be an array.
func decodeArray(s string) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w (got %T)", ErrNotArray, v)
	}
	return arr, nil
}

// stripCodeFences returns the body of the first fenced block, or s unchanged.
func stripCodeFences(s string) string {
	if m := codeFenceRegex.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// cleanupJSON removes trailing commas and comments. Comments are only
// stripped when they start a line so URLs inside string values survive.
func cleanupJSON(s string) string {
	cleaned := multiLineCommentRegex.ReplaceAllString(s, "")
	cleaned = singleLineCommentRegex.ReplaceAllString(cleaned, "")
	cleaned = trailingCommaRegex.ReplaceAllString(cleaned, "$1")
	return strings.TrimSpace(cleaned)
}

// startsWithScalarOrObject reports whether s opens with a JSON value that is
// not an array. Such a response is a wrong shape, not an array buried in prose.
func startsWithScalarOrObject(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, `"`)
}

// arraySpan returns the text from the first '[' to the last ']'.
func arraySpan(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
