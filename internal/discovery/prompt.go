package discovery

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leadscout/leadscout/internal/types"
)

// Market carries the country-specific wording of the discovery prompt.
type Market struct {
	Country       string   `yaml:"country"`
	Demonym       string   `yaml:"demonym"`
	PhonePrefixes []string `yaml:"phone_prefixes"`
	RegistryName  string   `yaml:"registry_name"`
	RegistryLabel string   `yaml:"registry_label"`
}

// DefaultMarket is Bulgaria: EIK registry codes, +359 or 08 phones.
func DefaultMarket() Market {
	return Market{
		Country:       "Bulgaria",
		Demonym:       "Bulgarian",
		PhonePrefixes: []string{"+359", "08"},
		RegistryName:  "EIK",
		RegistryLabel: "Unified Identification Code",
	}
}

// Validate checks that the prompt can be worded for this market.
func (m Market) Validate() error {
	if strings.TrimSpace(m.Country) == "" {
		return fmt.Errorf("market country is required")
	}
	if strings.TrimSpace(m.RegistryName) == "" {
		return fmt.Errorf("market registry_name is required")
	}
	return nil
}

func (m Market) adjective() string {
	if m.Demonym != "" {
		return m.Demonym
	}
	return m.Country
}

// LeadSchema is the JSON schema of the discovery answer.
var LeadSchema = json.RawMessage(`{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "name": {"type": "string"},
      "identifier": {"type": "string"},
      "phone": {"type": "string"},
      "email": {"type": "string"},
      "address": {"type": "string"},
      "website": {"type": "string"},
      "industry": {"type": "string"}
    },
    "required": ["name", "phone", "email", "industry"]
  }
}`)

// buildPrompt renders the discovery prompt. At most maxExcluded identifiers
// are listed, taken from the sorted exclusion set; omitted reports how many
// were left out.
func buildPrompt(f types.SearchFilters, m Market, maxExcluded int) (prompt string, omitted int) {
	var b strings.Builder

	fmt.Fprintf(&b, "Search for active %s companies in the %q industry located in %q.\n",
		m.adjective(), f.Industry, f.City)
	b.WriteString("For each company, find the following details:\n")
	b.WriteString("- Official name (name)\n")
	if m.RegistryLabel != "" {
		fmt.Fprintf(&b, "- %s, %s (identifier)\n", m.RegistryName, m.RegistryLabel)
	} else {
		fmt.Fprintf(&b, "- %s (identifier)\n", m.RegistryName)
	}
	b.WriteString("- Valid phone number (phone)\n")
	b.WriteString("- Email address (email)\n")
	b.WriteString("- Physical address (address)\n")
	b.WriteString("- Official website (website)\n")
	b.WriteString("- Specific industry category (industry)\n\n")

	b.WriteString("Requirements:\n")
	b.WriteString("- Prioritize companies with active status and valid contact information.\n")
	if len(m.PhonePrefixes) > 0 {
		fmt.Fprintf(&b, "- Ensure phones follow the %s format (%s...).\n",
			m.adjective(), strings.Join(m.PhonePrefixes, " or "))
	}
	fmt.Fprintf(&b, "- Return exactly %d UNIQUE results.\n", f.Limit)

	if excluded := f.ExcludedIdentifiers.Sorted(); len(excluded) > 0 {
		listed := excluded
		if maxExcluded >= 0 && len(listed) > maxExcluded {
			listed = listed[:maxExcluded]
			omitted = len(excluded) - maxExcluded
		}
		if len(listed) > 0 {
			fmt.Fprintf(&b, "\nCRITICAL: DO NOT return any of these companies (%ss): %s. Find NEW companies only.\n",
				m.RegistryName, strings.Join(listed, ", "))
		}
	}

	b.WriteString("\nReturn the data as a JSON array of objects.")
	return b.String(), omitted
}
