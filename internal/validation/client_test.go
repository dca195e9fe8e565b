package validation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadscout/leadscout/internal/ai"
	"github.com/leadscout/leadscout/internal/ai/aitest"
	"github.com/leadscout/leadscout/internal/types"
)

var (
	discoveredAt = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	validatedAt  = discoveredAt.Add(time.Minute)
)

func newTestClient(t *testing.T, oracle ai.Oracle) *Client {
	t.Helper()
	c, err := NewClient(oracle, DefaultConfig())
	require.NoError(t, err)
	c.SetClock(func() time.Time { return validatedAt })
	return c
}

func sampleLeads() []*types.Lead {
	return []*types.Lead{
		{ID: "a", Name: "Alpha", Identifier: "1", Website: "alpha.bg", Email: "a@alpha.bg", Status: types.StatusActive, LastUpdated: discoveredAt},
		{ID: "b", Name: "Beta", Identifier: "2", Status: types.StatusActive, LastUpdated: discoveredAt},
		{ID: "c", Name: "Gamma", Identifier: "3", Status: types.StatusActive, LastUpdated: discoveredAt},
	}
}

func statuses(leads []*types.Lead) []types.LeadStatus {
	out := make([]types.LeadStatus, len(leads))
	for i, l := range leads {
		out[i] = l.Status
	}
	return out
}

func leadIDs(leads []*types.Lead) []string {
	out := make([]string, len(leads))
	for i, l := range leads {
		out[i] = l.ID
	}
	return out
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(nil, DefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle cannot be nil")

	_, err = NewClient(aitest.New(), Config{MaxTokens: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestValidate_EmptyInputMakesNoCall(t *testing.T) {
	oracle := aitest.New()
	client := newTestClient(t, oracle)

	out, report := client.ValidateWithReport(context.Background(), nil)
	assert.Empty(t, out)
	assert.False(t, report.Degraded)
	assert.Equal(t, 0, oracle.Calls(Operation))

	out = client.Validate(context.Background(), []*types.Lead{})
	assert.Empty(t, out)
	assert.Equal(t, 0, oracle.Calls(Operation))
}

func TestValidate_Reconciliation(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     []types.LeadStatus
		matched  int
		changed  int
		degraded bool
	}{
		{
			name:     "all verdicts in order",
			response: `[{"id":"a","status":"inactive"},{"id":"b","status":"active"},{"id":"c","status":"inactive"}]`,
			want:     []types.LeadStatus{types.StatusInactive, types.StatusActive, types.StatusInactive},
			matched:  3,
			changed:  2,
		},
		{
			name:     "reordered response",
			response: `[{"id":"c","status":"inactive"},{"id":"a","status":"inactive"},{"id":"b","status":"active"}]`,
			want:     []types.LeadStatus{types.StatusInactive, types.StatusActive, types.StatusInactive},
			matched:  3,
			changed:  2,
		},
		{
			name:     "partial response",
			response: `[{"id":"b","status":"inactive"}]`,
			want:     []types.LeadStatus{types.StatusActive, types.StatusInactive, types.StatusActive},
			matched:  1,
			changed:  1,
		},
		{
			name:     "empty array",
			response: `[]`,
			want:     []types.LeadStatus{types.StatusActive, types.StatusActive, types.StatusActive},
		},
		{
			name:     "invalid statuses ignored",
			response: `[{"id":"a","status":"dissolved"},{"id":"b","status":"INACTIVE"},{"id":"c","status":""}]`,
			want:     []types.LeadStatus{types.StatusActive, types.StatusActive, types.StatusActive},
		},
		{
			name:     "unknown ids and junk elements ignored",
			response: `["x", 7, null, {"status":"inactive"}, {"id":"zzz","status":"inactive"}, {"id":"a","status":"inactive"}]`,
			want:     []types.LeadStatus{types.StatusInactive, types.StatusActive, types.StatusActive},
			matched:  1,
			changed:  1,
		},
		{
			name:     "first verdict per id wins",
			response: `[{"id":"a","status":"inactive"},{"id":"a","status":"active"}]`,
			want:     []types.LeadStatus{types.StatusInactive, types.StatusActive, types.StatusActive},
			matched:  1,
			changed:  1,
		},
		{
			name:     "extra entries beyond input",
			response: `[{"id":"a","status":"active"},{"id":"b","status":"active"},{"id":"c","status":"active"},{"id":"d","status":"inactive"}]`,
			want:     []types.LeadStatus{types.StatusActive, types.StatusActive, types.StatusActive},
			matched:  3,
		},
		{
			name:     "malformed payload",
			response: `this is not json`,
			want:     []types.LeadStatus{types.StatusActive, types.StatusActive, types.StatusActive},
			degraded: true,
		},
		{
			name:     "object payload",
			response: `{"a":"inactive"}`,
			want:     []types.LeadStatus{types.StatusActive, types.StatusActive, types.StatusActive},
			degraded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := aitest.New().On(Operation, tt.response)
			client := newTestClient(t, oracle)
			input := sampleLeads()

			out, report := client.ValidateWithReport(context.Background(), input)

			require.Len(t, out, len(input))
			assert.Equal(t, []string{"a", "b", "c"}, leadIDs(out))
			assert.Equal(t, tt.want, statuses(out))
			assert.Equal(t, tt.matched, report.Matched)
			assert.Equal(t, tt.changed, report.Changed)
			assert.Equal(t, tt.degraded, report.Degraded)
			assert.Equal(t, 3, report.Total)
			assert.Equal(t, 1, oracle.Calls(Operation))
		})
	}
}

func TestValidate_CopiesAndBumpsTimestampOnlyOnChange(t *testing.T) {
	oracle := aitest.New().On(Operation, `[{"id":"a","status":"inactive"},{"id":"b","status":"active"}]`)
	client := newTestClient(t, oracle)
	input := sampleLeads()

	out := client.Validate(context.Background(), input)

	// inputs untouched
	assert.Equal(t, types.StatusActive, input[0].Status)
	assert.Equal(t, discoveredAt, input[0].LastUpdated)
	assert.NotSame(t, input[0], out[0])

	assert.Equal(t, validatedAt, out[0].LastUpdated)
	assert.Equal(t, discoveredAt, out[1].LastUpdated, "unchanged status keeps timestamp")
	assert.Equal(t, discoveredAt, out[2].LastUpdated)

	// other fields carried over
	assert.Equal(t, input[0].Identifier, out[0].Identifier)
	assert.Equal(t, input[0].Website, out[0].Website)
}

func TestValidate_SoftFailure(t *testing.T) {
	boom := errors.New("503 overloaded")
	oracle := aitest.New().Fail(Operation, boom)
	client := newTestClient(t, oracle)
	input := sampleLeads()

	out, report := client.ValidateWithReport(context.Background(), input)

	assert.True(t, report.Degraded)
	assert.ErrorIs(t, report.Err, boom)
	require.Len(t, out, 3)
	for i := range input {
		assert.Same(t, input[i], out[i])
	}
}

func TestValidate_CancelledContextDegrades(t *testing.T) {
	oracle := aitest.New().On(Operation, `[]`)
	client := newTestClient(t, oracle)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, report := client.ValidateWithReport(ctx, sampleLeads())
	assert.True(t, report.Degraded)
	assert.ErrorIs(t, report.Err, context.Canceled)
	assert.Len(t, out, 3)
}

func TestValidate_Request(t *testing.T) {
	oracle := aitest.New().On(Operation, `[]`)
	client := newTestClient(t, oracle)

	client.Validate(context.Background(), sampleLeads())

	req := oracle.Requests()[0]
	assert.False(t, req.WebSearch)
	assert.JSONEq(t, string(StatusSchema), string(req.Schema))
	assert.Contains(t, req.Prompt, "Quickly verify these Bulgarian companies.")
	assert.Contains(t, req.Prompt, "'active' or 'inactive'")

	_, data, ok := strings.Cut(req.Prompt, "Data: ")
	require.True(t, ok)
	var sent []map[string]string
	require.NoError(t, json.Unmarshal([]byte(data), &sent))
	require.Len(t, sent, 3)
	assert.Equal(t, map[string]string{
		"id": "a", "name": "Alpha", "website": "alpha.bg", "email": "a@alpha.bg",
	}, sent[0])
}
