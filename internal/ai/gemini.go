package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiOracle calls the Gemini API through the genai SDK.
// Grounded requests enable the Google Search tool.
type GeminiOracle struct {
	client          *genai.Client
	discoveryModel  string
	validationModel string
}

// NewGeminiOracle creates the backend. The SDK does not retry
// generateContent, so each Generate is exactly one attempt. Timeouts come
// from the request context (see Gate).
func NewGeminiOracle(cfg Config) (*GeminiOracle, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	discoveryModel := cfg.DiscoveryModel
	if discoveryModel == "" {
		discoveryModel = ModelGeminiPro
	}
	validationModel := cfg.ValidationModel
	if validationModel == "" {
		validationModel = ModelGeminiFlash
	}
	return &GeminiOracle{
		client:          client,
		discoveryModel:  discoveryModel,
		validationModel: validationModel,
	}, nil
}

// Name implements Oracle.
func (o *GeminiOracle) Name() string { return ProviderGemini }

// Generate implements Oracle.
func (o *GeminiOracle) Generate(ctx context.Context, req Request) (string, error) {
	startTime := time.Now()

	model := req.Model
	if model == "" {
		model = o.validationModel
		if req.WebSearch {
			model = o.discoveryModel
		}
	}

	prompt, gc, err := generateConfig(req)
	if err != nil {
		return "", fmt.Errorf("encoding gemini request: %w", err)
	}

	resp, err := o.client.Models.GenerateContent(ctx, model, genai.Text(prompt), gc)
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini blocked the prompt: %s", resp.PromptFeedback.BlockReason)
	}

	attrs := []any{
		"provider", ProviderGemini,
		"operation", req.Operation,
		"model", model,
		"duration", time.Since(startTime),
	}
	if u := resp.UsageMetadata; u != nil {
		attrs = append(attrs, "input_tokens", u.PromptTokenCount, "output_tokens", u.CandidatesTokenCount)
	}
	slog.Debug("oracle call finished", attrs...)

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// generateConfig maps a Request onto the SDK config. JSON mode is only
// requested without search grounding; grounded calls carry the schema in
// the prompt text.
func generateConfig(req Request) (string, *genai.GenerateContentConfig, error) {
	gc := &genai.GenerateContentConfig{MaxOutputTokens: int32(req.MaxTokens)}
	prompt := req.Prompt

	if req.WebSearch {
		gc.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
		prompt = withSchema(req.Prompt, req.Schema)
	} else if len(req.Schema) > 0 {
		var schema any
		if err := json.Unmarshal(req.Schema, &schema); err != nil {
			return "", nil, fmt.Errorf("invalid response schema: %w", err)
		}
		gc.ResponseMIMEType = "application/json"
		gc.ResponseJsonSchema = schema
	}
	return prompt, gc, nil
}
