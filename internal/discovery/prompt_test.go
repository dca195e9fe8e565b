package discovery

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadscout/leadscout/internal/ai/aitest"
	"github.com/leadscout/leadscout/internal/types"
)

func TestBuildPrompt_Basics(t *testing.T) {
	f := types.SearchFilters{Industry: "Dental clinics", City: "Plovdiv", Limit: 100}

	prompt, omitted := buildPrompt(f, DefaultMarket(), 100)

	assert.Equal(t, 0, omitted)
	assert.Contains(t, prompt, `active Bulgarian companies in the "Dental clinics" industry located in "Plovdiv"`)
	assert.Contains(t, prompt, "EIK, Unified Identification Code (identifier)")
	assert.Contains(t, prompt, "(+359 or 08...)")
	assert.Contains(t, prompt, "Return exactly 100 UNIQUE results.")
	assert.NotContains(t, prompt, "CRITICAL")
}

func TestBuildPrompt_Exclusions(t *testing.T) {
	f := types.SearchFilters{Industry: "IT", City: "Varna", Limit: 50}.
		WithExclusions(types.NewIdentifierSet("300", "100", "200"))

	prompt, omitted := buildPrompt(f, DefaultMarket(), 100)

	assert.Equal(t, 0, omitted)
	assert.Contains(t, prompt,
		"CRITICAL: DO NOT return any of these companies (EIKs): 100, 200, 300. Find NEW companies only.")
}

func TestBuildPrompt_TruncatesSortedPrefix(t *testing.T) {
	var all []string
	for i := 0; i < 150; i++ {
		all = append(all, fmt.Sprintf("id%03d", i))
	}
	f := types.SearchFilters{Industry: "IT", City: "Varna", Limit: 50}.
		WithExclusions(types.NewIdentifierSet(all...))

	prompt, omitted := buildPrompt(f, DefaultMarket(), 100)

	assert.Equal(t, 50, omitted)
	assert.Contains(t, prompt, "id000, id001")
	assert.Contains(t, prompt, "id099.")
	assert.NotContains(t, prompt, "id100")
	assert.NotContains(t, prompt, "id149")
}

func TestBuildPrompt_ZeroCapListsNothing(t *testing.T) {
	f := types.SearchFilters{Industry: "IT", City: "Varna", Limit: 50}.
		WithExclusions(types.NewIdentifierSet("1", "2"))

	prompt, omitted := buildPrompt(f, DefaultMarket(), 0)

	assert.Equal(t, 2, omitted)
	assert.NotContains(t, prompt, "CRITICAL")
}

func TestBuildPrompt_CustomMarket(t *testing.T) {
	m := Market{
		Country:       "Romania",
		Demonym:       "Romanian",
		PhonePrefixes: []string{"+40"},
		RegistryName:  "CUI",
	}
	f := types.SearchFilters{Industry: "Logistics", City: "Cluj", Limit: 200}.
		WithExclusions(types.NewIdentifierSet("RO1"))

	prompt, _ := buildPrompt(f, m, 100)

	assert.Contains(t, prompt, "active Romanian companies")
	assert.Contains(t, prompt, "- CUI (identifier)")
	assert.Contains(t, prompt, "(+40...)")
	assert.Contains(t, prompt, "(CUIs): RO1.")
	assert.NotContains(t, prompt, "Bulgarian")
}

func TestMarket_AdjectiveFallsBackToCountry(t *testing.T) {
	m := Market{Country: "Serbia", RegistryName: "PIB"}
	assert.Equal(t, "Serbia", m.adjective())
}

func TestDiscover_PromptCarriesExclusions(t *testing.T) {
	oracle := aitest.New().On(Operation, `[]`)
	client := newTestClient(t, oracle, DefaultConfig())

	f := filters().WithExclusions(types.NewIdentifierSet("555", "444"))
	_, err := client.Discover(context.Background(), f)
	require.NoError(t, err)

	prompt := oracle.Requests()[0].Prompt
	assert.True(t, strings.Contains(prompt, "(EIKs): 444, 555."), prompt)
	assert.Contains(t, prompt, "Return exactly 50 UNIQUE results.")
}
