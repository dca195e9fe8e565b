package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leadscout/leadscout/internal/ai"
	"github.com/leadscout/leadscout/internal/types"
)

// Operation is the oracle operation name used for discovery calls.
const Operation = "discovery"

// Config holds configuration for the discovery client
type Config struct {
	// Market supplies the country, phone format and registry wording.
	Market Market

	// MaxExcludedInPrompt caps how many History identifiers are listed in
	// the prompt. The rest are still filtered out after the call.
	// Default: 100
	MaxExcludedInPrompt int

	// Model overrides the oracle's discovery model when non-empty.
	Model string

	// MaxTokens caps the answer length. 200 leads need roughly 12k tokens.
	// Default: 16000
	MaxTokens int
}

// DefaultConfig returns the default discovery configuration
func DefaultConfig() Config {
	return Config{
		Market:              DefaultMarket(),
		MaxExcludedInPrompt: 100,
		MaxTokens:           16000,
	}
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if err := c.Market.Validate(); err != nil {
		return err
	}
	if c.MaxExcludedInPrompt < 0 {
		return fmt.Errorf("max_excluded_in_prompt cannot be negative (got %d)", c.MaxExcludedInPrompt)
	}
	if c.MaxExcludedInPrompt > 1000 {
		return fmt.Errorf("max_excluded_in_prompt too large (got %d, max 1000)", c.MaxExcludedInPrompt)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive (got %d)", c.MaxTokens)
	}
	return nil
}

// Client discovers leads through an oracle.
type Client struct {
	oracle ai.Oracle
	config Config
	now    func() time.Time
}

// NewClient creates a discovery client.
func NewClient(oracle ai.Oracle, cfg Config) (*Client, error) {
	if oracle == nil {
		return nil, fmt.Errorf("oracle cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Client{oracle: oracle, config: cfg, now: time.Now}, nil
}

// SetClock replaces the time source used for lead IDs and timestamps.
func (c *Client) SetClock(now func() time.Time) {
	c.now = now
}

// Source is the provenance tag stamped on every discovered lead.
func (c *Client) Source() string {
	return c.oracle.Name() + " / web-search grounding"
}

// Discover asks the oracle for leads matching filters. It makes exactly one
// oracle call. Any failure is returned as *Error and no leads.
func (c *Client) Discover(ctx context.Context, filters types.SearchFilters) ([]*types.Lead, error) {
	prompt, omitted := buildPrompt(filters, c.config.Market, c.config.MaxExcludedInPrompt)
	if omitted > 0 {
		slog.Info("exclusion list truncated in discovery prompt",
			"listed", filters.ExcludedIdentifiers.Len()-omitted,
			"omitted", omitted,
			"note", "omitted identifiers are still filtered locally")
	}

	text, err := c.oracle.Generate(ctx, ai.Request{
		Operation: Operation,
		Prompt:    prompt,
		Schema:    LeadSchema,
		WebSearch: true,
		Model:     c.config.Model,
		MaxTokens: c.config.MaxTokens,
	})
	if err != nil {
		return nil, &Error{Stage: "oracle", Err: err}
	}

	items, err := ai.ParseArray(text)
	if err != nil {
		return nil, &Error{Stage: "parse", Err: fmt.Errorf("%w: %w", ErrUnparsable, err)}
	}

	now := c.now()
	source := c.Source()
	leads := make([]*types.Lead, 0, len(items))
	skipped, nameless := 0, 0
	for i, item := range items {
		lead, ok := toLead(item)
		if !ok {
			skipped++
			continue
		}
		if lead.Name == "" {
			nameless++
		}
		lead.ID = fmt.Sprintf("lead-%d-%d", now.UnixNano(), i)
		lead.Status = types.StatusActive
		lead.Source = source
		lead.LastUpdated = now
		leads = append(leads, lead)
	}

	slog.Debug("discovery complete",
		"industry", filters.Industry,
		"city", filters.City,
		"requested", filters.Limit,
		"returned", len(items),
		"kept", len(leads),
		"skipped", skipped,
		"nameless", nameless)

	return leads, nil
}

// identifierKeys lists accepted spellings of the registry code field.
var identifierKeys = []string{"identifier", "eik", "registry_id"}

// toLead converts one untrusted array element. Only non-objects are
// rejected; a missing name leaves Name empty.
func toLead(item any) (*types.Lead, bool) {
	obj, ok := ai.Object(item)
	if !ok {
		return nil, false
	}

	lead := &types.Lead{
		Name:     ai.StringField(obj, "name"),
		Phone:    ai.StringField(obj, "phone"),
		Email:    ai.StringField(obj, "email"),
		Address:  ai.StringField(obj, "address"),
		Website:  ai.StringField(obj, "website"),
		Industry: ai.StringField(obj, "industry"),
	}
	for _, key := range identifierKeys {
		if v := normalizeIdentifier(ai.StringField(obj, key)); v != "" {
			lead.Identifier = v
			break
		}
	}
	return lead, true
}

// normalizeIdentifier strips whitespace inside registry codes so
// "123 456 789" and "123456789" dedup together.
func normalizeIdentifier(s string) string {
	return strings.Join(strings.Fields(s), "")
}
