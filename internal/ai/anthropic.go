package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicOracle calls the Anthropic Messages API.
// Grounded requests enable the server-side web search tool.
type AnthropicOracle struct {
	client          *anthropic.Client
	discoveryModel  string
	validationModel string
	maxSearches     int
}

// NewAnthropicOracle creates the backend. The SDK's own retries are turned
// off: each Generate is exactly one attempt.
func NewAnthropicOracle(cfg Config) *AnthropicOracle {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	discoveryModel := cfg.DiscoveryModel
	if discoveryModel == "" {
		discoveryModel = ModelSonnet
	}
	validationModel := cfg.ValidationModel
	if validationModel == "" {
		validationModel = ModelHaiku
	}
	maxSearches := cfg.MaxSearches
	if maxSearches <= 0 {
		maxSearches = 5
	}

	return &AnthropicOracle{
		client:          &client,
		discoveryModel:  discoveryModel,
		validationModel: validationModel,
		maxSearches:     maxSearches,
	}
}

// Name implements Oracle.
func (o *AnthropicOracle) Name() string { return ProviderAnthropic }

// Generate implements Oracle.
func (o *AnthropicOracle) Generate(ctx context.Context, req Request) (string, error) {
	startTime := time.Now()

	model := req.Model
	if model == "" {
		model = o.validationModel
		if req.WebSearch {
			model = o.discoveryModel
		}
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(withSchema(req.Prompt, req.Schema))),
		},
	}
	if req.WebSearch {
		params.Tools = []anthropic.ToolUnionParam{{
			OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{
				MaxUses: anthropic.Int(int64(o.maxSearches)),
			},
		}}
	}

	response, err := o.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	text := finalText(response.Content)
	slog.Debug("oracle call finished",
		"provider", ProviderAnthropic,
		"operation", req.Operation,
		"model", model,
		"input_tokens", response.Usage.InputTokens,
		"output_tokens", response.Usage.OutputTokens,
		"duration", time.Since(startTime))

	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// finalText joins the text blocks that follow the last search result block.
// With web search enabled the model narrates between searches; the answer is
// the text written after the final result came back.
func finalText(blocks []anthropic.ContentBlockUnion) string {
	start := 0
	for i, block := range blocks {
		if block.Type == "web_search_tool_result" {
			start = i + 1
		}
	}
	var sb strings.Builder
	for _, block := range blocks[start:] {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

// withSchema appends the output contract to prompts for backends without a
// native schema parameter.
func withSchema(prompt string, schema []byte) string {
	if len(schema) == 0 {
		return prompt
	}
	return prompt + "\n\nOUTPUT FORMAT: a JSON array matching this JSON schema:\n" + string(schema) +
		"\n\nIMPORTANT: Respond with ONLY the raw JSON array. Do NOT wrap it in markdown code fences."
}
