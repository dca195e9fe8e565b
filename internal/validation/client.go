// Package validation re-checks discovered leads with a cheap oracle call and
// updates their status.
//
// Validation is advisory. It never adds, drops or reorders leads, and a
// failed call degrades to "no change" instead of failing the run.
package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/leadscout/leadscout/internal/ai"
	"github.com/leadscout/leadscout/internal/types"
)

// Operation is the oracle operation name used for validation calls.
const Operation = "validation"

// StatusSchema is the JSON schema of the validation answer.
var StatusSchema = json.RawMessage(`{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "id": {"type": "string"},
      "status": {"type": "string", "enum": ["active", "inactive"]}
    },
    "required": ["id", "status"]
  }
}`)

// Config holds configuration for the validation client
type Config struct {
	// Demonym qualifies the companies in the prompt ("Bulgarian companies").
	Demonym string

	// Model overrides the oracle's validation model when non-empty.
	Model string

	// MaxTokens caps the answer length. Default: 8000
	MaxTokens int
}

// DefaultConfig returns the default validation configuration
func DefaultConfig() Config {
	return Config{
		Demonym:   "Bulgarian",
		MaxTokens: 8000,
	}
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive (got %d)", c.MaxTokens)
	}
	return nil
}

// Report summarises one validation pass.
type Report struct {
	Total    int   // leads sent
	Matched  int   // leads with a usable verdict in the answer
	Changed  int   // leads whose status changed
	Degraded bool  // the call failed or the answer was unusable
	Err      error // why it degraded
}

// Client validates leads through an oracle.
type Client struct {
	oracle ai.Oracle
	config Config
	now    func() time.Time
}

// NewClient creates a validation client.
func NewClient(oracle ai.Oracle, cfg Config) (*Client, error) {
	if oracle == nil {
		return nil, fmt.Errorf("oracle cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Client{oracle: oracle, config: cfg, now: time.Now}, nil
}

// SetClock replaces the time source used for LastUpdated.
func (c *Client) SetClock(now func() time.Time) {
	c.now = now
}

// Validate returns leads with refreshed statuses; see ValidateWithReport.
func (c *Client) Validate(ctx context.Context, leads []*types.Lead) []*types.Lead {
	out, _ := c.ValidateWithReport(ctx, leads)
	return out
}

// ValidateWithReport makes at most one oracle call. The result always has
// the same length and order as leads. An empty input is returned as is
// without calling the oracle. On failure the input is returned unchanged and
// the report is marked degraded.
func (c *Client) ValidateWithReport(ctx context.Context, leads []*types.Lead) ([]*types.Lead, Report) {
	report := Report{Total: len(leads)}
	if len(leads) == 0 {
		return leads, report
	}

	prompt, err := c.buildPrompt(leads)
	if err != nil {
		return c.degrade(leads, report, err)
	}

	text, err := c.oracle.Generate(ctx, ai.Request{
		Operation: Operation,
		Prompt:    prompt,
		Schema:    StatusSchema,
		Model:     c.config.Model,
		MaxTokens: c.config.MaxTokens,
	})
	if err != nil {
		return c.degrade(leads, report, err)
	}

	items, err := ai.ParseArray(text)
	if err != nil {
		return c.degrade(leads, report, err)
	}

	verdicts := make(map[string]types.LeadStatus, len(items))
	for _, item := range items {
		obj, ok := ai.Object(item)
		if !ok {
			continue
		}
		id := ai.StringField(obj, "id")
		status := types.LeadStatus(ai.StringField(obj, "status"))
		if id == "" || (status != types.StatusActive && status != types.StatusInactive) {
			continue
		}
		// first verdict per id wins
		if _, seen := verdicts[id]; !seen {
			verdicts[id] = status
		}
	}

	now := c.now()
	out := make([]*types.Lead, len(leads))
	for i, lead := range leads {
		if lead == nil {
			continue
		}
		cp := lead.Clone()
		if status, ok := verdicts[lead.ID]; ok {
			report.Matched++
			if status != cp.Status {
				cp.Status = status
				cp.LastUpdated = now
				report.Changed++
			}
		}
		out[i] = cp
	}

	slog.Debug("validation complete",
		"total", report.Total, "matched", report.Matched, "changed", report.Changed)
	return out, report
}

func (c *Client) degrade(leads []*types.Lead, report Report, err error) ([]*types.Lead, Report) {
	report.Degraded = true
	report.Err = err
	slog.Warn("validation degraded, keeping discovered statuses",
		"leads", len(leads), "error", err)
	return leads, report
}

type promptLead struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Website string `json:"website"`
	Email   string `json:"email"`
}

func (c *Client) buildPrompt(leads []*types.Lead) (string, error) {
	data := make([]promptLead, 0, len(leads))
	for _, l := range leads {
		if l == nil {
			continue
		}
		data = append(data, promptLead{ID: l.ID, Name: l.Name, Website: l.Website, Email: l.Email})
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encoding validation payload: %w", err)
	}

	subject := "companies"
	if c.config.Demonym != "" {
		subject = c.config.Demonym + " companies"
	}
	return fmt.Sprintf("Quickly verify these %s. Mark as 'active' or 'inactive' based on data consistency.\n"+
		"Respond with a JSON array of {\"id\", \"status\"} objects, one per company, reusing the given ids.\n"+
		"Data: %s", subject, payload), nil
}
