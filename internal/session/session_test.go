package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadscout/leadscout/internal/ai/aitest"
	"github.com/leadscout/leadscout/internal/deduplication"
	"github.com/leadscout/leadscout/internal/discovery"
	"github.com/leadscout/leadscout/internal/events"
	"github.com/leadscout/leadscout/internal/history"
	"github.com/leadscout/leadscout/internal/types"
	"github.com/leadscout/leadscout/internal/validation"
)

var clock = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return clock }

// stubDiscoverer returns canned leads (fresh copies per call) or an error.
type stubDiscoverer struct {
	mu      sync.Mutex
	leads   []*types.Lead
	err     error
	calls   int
	filters []types.SearchFilters

	// when started is non-nil, Discover signals it and waits for release
	started chan struct{}
	release chan struct{}
}

func (d *stubDiscoverer) Discover(ctx context.Context, f types.SearchFilters) ([]*types.Lead, error) {
	d.mu.Lock()
	d.calls++
	d.filters = append(d.filters, f)
	leads, err := cloneLeads(d.leads), d.err
	started, release := d.started, d.release
	d.mu.Unlock()

	if started != nil {
		close(started)
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return leads, err
}

func (d *stubDiscoverer) lastFilters() types.SearchFilters {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filters[len(d.filters)-1]
}

// stubValidator sets statuses by identifier, or fails softly.
type stubValidator struct {
	mu       sync.Mutex
	statuses map[string]types.LeadStatus
	degrade  error
	calls    int
	inputs   [][]*types.Lead
}

func (v *stubValidator) ValidateWithReport(ctx context.Context, leads []*types.Lead) ([]*types.Lead, validation.Report) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	v.inputs = append(v.inputs, leads)

	report := validation.Report{Total: len(leads)}
	if v.degrade != nil {
		report.Degraded = true
		report.Err = v.degrade
		return leads, report
	}
	out := make([]*types.Lead, len(leads))
	for i, l := range leads {
		cp := l.Clone()
		if st, ok := v.statuses[l.Identifier]; ok {
			report.Matched++
			if st != cp.Status {
				cp.Status = st
				report.Changed++
			}
		}
		out[i] = cp
	}
	return out, report
}

func (v *stubValidator) callCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

func mkLeads(identifiers ...string) []*types.Lead {
	out := make([]*types.Lead, len(identifiers))
	for i, id := range identifiers {
		out[i] = &types.Lead{
			ID:          fmt.Sprintf("lead-%d", i),
			Name:        "Company " + id,
			Identifier:  id,
			Status:      types.StatusActive,
			LastUpdated: clock,
		}
	}
	return out
}

func search() types.SearchFilters {
	return types.SearchFilters{Industry: "Construction", City: "Sofia", Limit: 50}
}

type fixture struct {
	session   *Session
	store     *history.MemoryStore
	discovery *stubDiscoverer
	validator *stubValidator
	recorder  *Recorder
}

func newFixture(t *testing.T, seeded ...string) *fixture {
	t.Helper()
	f := &fixture{
		store:     history.NewMemoryStoreWith(seeded...),
		discovery: &stubDiscoverer{},
		validator: &stubValidator{statuses: map[string]types.LeadStatus{}},
		recorder:  &Recorder{},
	}
	s, err := New(context.Background(), Config{
		Store:      f.store,
		Discoverer: f.discovery,
		Validator:  f.validator,
		Observer:   f.recorder,
		Dedup:      deduplication.DefaultConfig(),
		Now:        fixedNow,
	})
	require.NoError(t, err)
	f.session = s
	return f
}

func identifiersOf(leads []*types.Lead) []string {
	out := make([]string, len(leads))
	for i, l := range leads {
		out[i] = l.Identifier
	}
	return out
}

func statusesOf(leads []*types.Lead) []types.LeadStatus {
	out := make([]types.LeadStatus, len(leads))
	for i, l := range leads {
		out[i] = l.Status
	}
	return out
}

func storedHistory(t *testing.T, store history.Store) []string {
	t.Helper()
	ids, err := store.Load(context.Background())
	require.NoError(t, err)
	return ids.Sorted()
}

type failingLoadStore struct{ history.MemoryStore }

func (s *failingLoadStore) Load(ctx context.Context) (types.IdentifierSet, error) {
	return nil, errors.New("database is locked")
}

func TestNew(t *testing.T) {
	valid := Config{
		Store:      history.NewMemoryStore(),
		Discoverer: &stubDiscoverer{},
		Validator:  &stubValidator{},
	}

	tests := []struct {
		name     string
		modify   func(*Config)
		errorMsg string
	}{
		{"nil store", func(c *Config) { c.Store = nil }, "history store cannot be nil"},
		{"nil discoverer", func(c *Config) { c.Discoverer = nil }, "discoverer cannot be nil"},
		{"nil validator", func(c *Config) { c.Validator = nil }, "validator cannot be nil"},
		{"load failure", func(c *Config) { c.Store = &failingLoadStore{} }, "loading history"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			_, err := New(context.Background(), cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestNew_LoadsHistory(t *testing.T) {
	f := newFixture(t, "A", "B")

	assert.Equal(t, types.StateIdle, f.session.State())
	assert.Equal(t, 2, f.session.HistoryCount())
	assert.Empty(t, f.session.Leads())
	assert.Empty(t, f.session.LastError())
	assert.Nil(t, f.session.LastRun())
}

func TestNew_MalformedHistoryStartsEmpty(t *testing.T) {
	store := history.NewMemoryStore()
	store.SetRaw([]byte(`{"oops": true}`))

	s, err := New(context.Background(), Config{
		Store:      store,
		Discoverer: &stubDiscoverer{},
		Validator:  &stubValidator{},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, s.HistoryCount())
}

// Scenario A: empty History, three new leads, one marked inactive.
func TestSearch_ScenarioA(t *testing.T) {
	f := newFixture(t)
	f.discovery.leads = mkLeads("A", "B", "C")
	f.validator.statuses = map[string]types.LeadStatus{
		"A": types.StatusInactive, "B": types.StatusActive, "C": types.StatusActive,
	}

	require.NoError(t, f.session.Search(context.Background(), search()))

	leads := f.session.Leads()
	assert.Equal(t, []string{"A", "B", "C"}, identifiersOf(leads))
	assert.Equal(t, []types.LeadStatus{types.StatusInactive, types.StatusActive, types.StatusActive}, statusesOf(leads))
	assert.Equal(t, []string{"A", "B", "C"}, f.session.History().Sorted())
	assert.Equal(t, []string{"A", "B", "C"}, storedHistory(t, f.store))
	assert.Equal(t, types.StateCompleted, f.session.State())
	assert.Equal(t, []string{
		"idle->searching", "searching->validating", "validating->completed",
	}, f.recorder.Transitions())
}

// Scenario B: the oracle ignores the exclusion; the local filter still drops A.
func TestSearch_ScenarioB(t *testing.T) {
	f := newFixture(t, "A")
	f.discovery.leads = mkLeads("A", "B")

	require.NoError(t, f.session.Search(context.Background(), search()))

	assert.True(t, f.discovery.lastFilters().ExcludedIdentifiers.Has("A"))
	assert.Equal(t, []string{"B"}, identifiersOf(f.session.Leads()))
	require.Equal(t, 1, f.validator.callCount())
	assert.Len(t, f.validator.inputs[0], 1)
	assert.Equal(t, "B", f.validator.inputs[0][0].Identifier)
	assert.Equal(t, []string{"A", "B"}, storedHistory(t, f.store))

	run := f.session.LastRun()
	require.NotNil(t, run)
	assert.Equal(t, 2, run.Discovered)
	assert.Equal(t, 1, run.FilteredOut)
	assert.Equal(t, 1, run.Kept)
	assert.Equal(t, 1, run.HistoryAdded)
}

// Scenario C: discovery fails; nothing changes except the state.
func TestSearch_ScenarioC(t *testing.T) {
	f := newFixture(t)
	f.discovery.leads = mkLeads("A", "B")
	require.NoError(t, f.session.Search(context.Background(), search()))
	leadsBefore := f.session.Leads()
	historyBefore := f.session.History().Sorted()
	savesBefore := f.store.Saves()

	boom := &discovery.Error{Stage: "oracle", Err: errors.New("quota exceeded")}
	f.discovery.err = boom
	f.discovery.leads = mkLeads("X")

	err := f.session.Search(context.Background(), search())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, types.StateError, f.session.State())
	assert.Contains(t, f.session.LastError(), "quota exceeded")
	assert.Equal(t, leadsBefore, f.session.Leads())
	assert.Equal(t, historyBefore, f.session.History().Sorted())
	assert.Equal(t, historyBefore, storedHistory(t, f.store))
	assert.Equal(t, savesBefore, f.store.Saves())
	assert.Equal(t, 1, f.validator.callCount(), "validation not reached")

	run := f.session.LastRun()
	require.NotNil(t, run)
	assert.False(t, run.Succeeded())

	// the error state is not terminal and the next run clears the message
	f.discovery.err = nil
	require.NoError(t, f.session.Search(context.Background(), search()))
	assert.Equal(t, types.StateCompleted, f.session.State())
	assert.Empty(t, f.session.LastError())
	assert.Equal(t, []string{"X"}, identifiersOf(f.session.Leads()))
}

// Scenario D: validation fails softly; discovered statuses are kept and the
// run still completes and updates History.
func TestSearch_ScenarioD(t *testing.T) {
	f := newFixture(t)
	f.discovery.leads = mkLeads("A", "B")
	f.validator.degrade = errors.New("validation timed out")

	require.NoError(t, f.session.Search(context.Background(), search()))

	assert.Equal(t, types.StateCompleted, f.session.State())
	assert.Equal(t, []types.LeadStatus{types.StatusActive, types.StatusActive}, statusesOf(f.session.Leads()))
	assert.Equal(t, []string{"A", "B"}, storedHistory(t, f.store))
	assert.Empty(t, f.session.LastError())

	run := f.session.LastRun()
	require.NotNil(t, run)
	assert.True(t, run.ValidationDegraded)
	assert.Contains(t, run.String(), "validation skipped")

	var degraded int
	for _, ev := range f.recorder.Events() {
		if ev.Type == events.EventTypeValidationDegraded {
			degraded++
			assert.Equal(t, events.SeverityWarning, ev.Severity)
		}
	}
	assert.Equal(t, 1, degraded)
}

func TestSearch_EmptyAfterFilterSkipsValidation(t *testing.T) {
	f := newFixture(t, "A", "B")
	f.discovery.leads = mkLeads("A", "B")

	require.NoError(t, f.session.Search(context.Background(), search()))

	assert.Equal(t, types.StateCompleted, f.session.State())
	assert.Empty(t, f.session.Leads())
	assert.Equal(t, 0, f.validator.callCount())
	assert.Equal(t, []string{"idle->searching", "searching->completed"}, f.recorder.Transitions())
	assert.Equal(t, 0, f.store.Saves())
}

func TestSearch_EmptyDiscovery(t *testing.T) {
	f := newFixture(t)
	f.discovery.leads = nil

	require.NoError(t, f.session.Search(context.Background(), search()))
	assert.Equal(t, types.StateCompleted, f.session.State())
	assert.Equal(t, 0, f.validator.callCount())
}

func TestSearch_FilterNeverLeaksHistory(t *testing.T) {
	tests := []struct {
		name       string
		history    []string
		discovered []string
		want       []string
	}{
		{"disjoint", []string{"1", "2"}, []string{"3", "4"}, []string{"3", "4"}},
		{"full overlap", []string{"1", "2"}, []string{"2", "1"}, []string{}},
		{"partial", []string{"1", "3"}, []string{"1", "2", "3", "4"}, []string{"2", "4"}},
		{"repeats in batch kept", []string{"1"}, []string{"2", "2", "1", "3"}, []string{"2", "2", "3"}},
		{"blank identifiers kept", []string{"1"}, []string{"", "1", ""}, []string{"", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.history...)
			f.discovery.leads = mkLeads(tt.discovered...)
			before := types.NewIdentifierSet(tt.history...)

			require.NoError(t, f.session.Search(context.Background(), search()))

			got := f.session.Leads()
			assert.Equal(t, tt.want, identifiersOf(got))
			for _, l := range got {
				assert.False(t, before.Has(l.Identifier), "lead %s leaked from history", l.Identifier)
			}

			// monotonic: nothing removed, new identifiers added
			after := f.session.History()
			for id := range before {
				assert.True(t, after.Has(id))
			}
			for _, l := range got {
				if l.HasIdentifier() {
					assert.True(t, after.Has(l.Identifier))
				}
			}
			assert.False(t, after.Has(""))
		})
	}
}

func TestSearch_WithinBatchDedup(t *testing.T) {
	tests := []struct {
		name    string
		dedup   deduplication.Config
		want    []string
		repeats int
		message string
		summary string
	}{
		{
			name:    "default filters against history only",
			dedup:   deduplication.DefaultConfig(),
			want:    []string{"1", "1", "2"},
			message: "kept 3 of 3 leads (0 dropped)",
			summary: "3 discovered, 0 already seen, 3 kept, 0 status changes, 2 new in history (0s)",
		},
		{
			name:    "enabled drops repeats",
			dedup:   deduplication.Config{EnableWithinBatchDedup: true},
			want:    []string{"1", "2"},
			repeats: 1,
			message: "kept 2 of 3 leads (1 dropped)",
			summary: "3 discovered, 0 already seen, 1 repeats, 2 kept, 0 status changes, 2 new in history (0s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &Recorder{}
			s, err := New(context.Background(), Config{
				Store:      history.NewMemoryStore(),
				Discoverer: &stubDiscoverer{leads: mkLeads("1", "1", "2")},
				Validator:  &stubValidator{},
				Observer:   rec,
				Dedup:      tt.dedup,
				Now:        fixedNow,
			})
			require.NoError(t, err)

			require.NoError(t, s.Search(context.Background(), search()))
			assert.Equal(t, tt.want, identifiersOf(s.Leads()))
			assert.Equal(t, 2, s.HistoryCount())
			assert.Equal(t, tt.repeats, s.LastRun().WithinBatchDuplicates)
			assert.Equal(t, tt.summary, s.LastRun().String())

			var dedupMessages []string
			for _, ev := range rec.Events() {
				if ev.Type == events.EventTypeDeduplicationCompleted {
					dedupMessages = append(dedupMessages, ev.Message)
				}
			}
			assert.Equal(t, []string{tt.message}, dedupMessages)
		})
	}
}

func TestSearch_InvalidFiltersRejectedBeforeStateChange(t *testing.T) {
	f := newFixture(t)

	tests := []types.SearchFilters{
		{Industry: "", City: "Sofia", Limit: 50},
		{Industry: "IT", City: "  ", Limit: 50},
		{Industry: "IT", City: "Sofia", Limit: 75},
	}
	for _, filters := range tests {
		err := f.session.Search(context.Background(), filters)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid search")
	}

	assert.Equal(t, types.StateIdle, f.session.State())
	assert.Equal(t, 0, f.discovery.calls)
	assert.Empty(t, f.recorder.Events())
}

func TestSearch_PersistFailureRollsBack(t *testing.T) {
	f := newFixture(t, "A")
	f.discovery.leads = mkLeads("B", "C")
	f.validator.statuses = map[string]types.LeadStatus{"B": types.StatusInactive}
	boom := errors.New("disk full")
	f.store.FailSaves(boom)

	err := f.session.Search(context.Background(), search())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "persisting history")

	assert.Equal(t, types.StateError, f.session.State())
	assert.Equal(t, []string{"A"}, f.session.History().Sorted())
	assert.Equal(t, []string{"A"}, storedHistory(t, f.store))
	// validation already happened, so the working set holds its result
	assert.Equal(t, []types.LeadStatus{types.StatusInactive, types.StatusActive}, statusesOf(f.session.Leads()))
	assert.Equal(t, []string{"idle->searching", "searching->validating", "validating->error"}, f.recorder.Transitions())
}

func TestSearch_BusyWhileRunning(t *testing.T) {
	f := newFixture(t)
	f.discovery.leads = mkLeads("A")
	f.discovery.started = make(chan struct{})
	f.discovery.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- f.session.Search(context.Background(), search())
	}()
	<-f.discovery.started

	assert.Equal(t, types.StateSearching, f.session.State())
	assert.ErrorIs(t, f.session.Search(context.Background(), search()), ErrBusy)
	assert.ErrorIs(t, f.session.ResetHistory(context.Background()), ErrBusy)

	close(f.discovery.release)
	require.NoError(t, <-done)
	assert.Equal(t, types.StateCompleted, f.session.State())
	assert.Equal(t, 1, f.discovery.calls)
}

func TestSearch_CancelledDuringDiscovery(t *testing.T) {
	f := newFixture(t)
	f.discovery.started = make(chan struct{})
	f.discovery.release = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- f.session.Search(ctx, search())
	}()
	<-f.discovery.started
	cancel()

	err := <-done
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, types.StateError, f.session.State())
}

func TestDeleteLead_LeavesHistoryAlone(t *testing.T) {
	f := newFixture(t)
	f.discovery.leads = mkLeads("A", "B", "C")
	require.NoError(t, f.session.Search(context.Background(), search()))
	historyBefore := f.session.History().Sorted()

	leads := f.session.Leads()
	assert.True(t, f.session.DeleteLead(leads[1].ID))
	assert.False(t, f.session.DeleteLead(leads[1].ID))
	assert.False(t, f.session.DeleteLead("no-such-lead"))

	assert.Equal(t, []string{"A", "C"}, identifiersOf(f.session.Leads()))
	assert.Equal(t, historyBefore, f.session.History().Sorted())
	assert.Equal(t, historyBefore, storedHistory(t, f.store))
}

func TestClearLeads(t *testing.T) {
	f := newFixture(t)
	f.discovery.leads = mkLeads("A", "B")
	require.NoError(t, f.session.Search(context.Background(), search()))

	f.session.ClearLeads()
	assert.Empty(t, f.session.Leads())
	assert.Equal(t, 2, f.session.HistoryCount())
}

func TestResetHistory(t *testing.T) {
	f := newFixture(t, "OLD")
	f.discovery.leads = mkLeads("A")
	require.NoError(t, f.session.Search(context.Background(), search()))

	require.NoError(t, f.session.ResetHistory(context.Background()))

	assert.Equal(t, 0, f.session.HistoryCount())
	assert.Empty(t, storedHistory(t, f.store))
	assert.Len(t, f.session.Leads(), 1, "working set untouched")

	// a reset history no longer filters A out
	require.NoError(t, f.session.Search(context.Background(), search()))
	assert.Equal(t, []string{"A"}, identifiersOf(f.session.Leads()))
}

func TestResetHistory_StoreFailure(t *testing.T) {
	f := newFixture(t, "A")
	f.store.FailSaves(errors.New("read-only filesystem"))

	err := f.session.ResetHistory(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clearing history")
	assert.Equal(t, 1, f.session.HistoryCount())
}

func TestLeads_ReturnsCopies(t *testing.T) {
	f := newFixture(t)
	f.discovery.leads = mkLeads("A")
	require.NoError(t, f.session.Search(context.Background(), search()))

	leads := f.session.Leads()
	leads[0].Status = types.StatusPending
	leads[0].Name = "mutated"

	fresh := f.session.Leads()
	assert.Equal(t, types.StatusActive, fresh[0].Status)
	assert.Equal(t, "Company A", fresh[0].Name)

	hist := f.session.History()
	hist.Add("Z")
	assert.False(t, f.session.History().Has("Z"))
}

func TestSearch_ValidatorContractViolation(t *testing.T) {
	store := history.NewMemoryStore()
	s, err := New(context.Background(), Config{
		Store:      store,
		Discoverer: &stubDiscoverer{leads: mkLeads("A", "B")},
		Validator: validatorFunc(func(leads []*types.Lead) []*types.Lead {
			return leads[:1]
		}),
	})
	require.NoError(t, err)

	require.NoError(t, s.Search(context.Background(), search()))
	assert.Equal(t, []string{"A", "B"}, identifiersOf(s.Leads()))
	assert.True(t, s.LastRun().ValidationDegraded)
}

type validatorFunc func([]*types.Lead) []*types.Lead

func (f validatorFunc) ValidateWithReport(ctx context.Context, leads []*types.Lead) ([]*types.Lead, validation.Report) {
	return f(leads), validation.Report{Total: len(leads)}
}

func TestRunSummary(t *testing.T) {
	f := newFixture(t, "A")
	f.discovery.leads = mkLeads("A", "B", "B", "C")
	f.validator.statuses = map[string]types.LeadStatus{"C": types.StatusInactive}

	require.NoError(t, f.session.Search(context.Background(), search()))

	run := f.session.LastRun()
	require.NotNil(t, run)
	assert.NotEmpty(t, run.RunID)
	assert.Equal(t, search(), run.Filters)
	assert.Equal(t, 4, run.Discovered)
	assert.Equal(t, 1, run.FilteredOut)
	assert.Equal(t, 0, run.WithinBatchDuplicates)
	assert.Equal(t, 3, run.Kept)
	assert.Equal(t, 1, run.Validated)
	assert.Equal(t, 1, run.StatusChanges)
	assert.Equal(t, 2, run.HistoryAdded)
	assert.True(t, run.Succeeded())
	assert.Equal(t, "4 discovered, 1 already seen, 3 kept, 1 status changes, 2 new in history (0s)", run.String())

	// every event of the run carries its ID
	for _, ev := range f.recorder.Events() {
		assert.Equal(t, run.RunID, ev.RunID, ev.Type)
	}
}

// End to end through the real discovery and validation clients.
func TestSearch_WithOracleClients(t *testing.T) {
	oracle := aitest.New()
	oracle.On(discovery.Operation, `[
		{"name": "Alpha", "identifier": "A", "phone": "0888", "email": "a@a.bg", "industry": "IT"},
		{"name": "Beta", "identifier": "B", "phone": "0888", "email": "b@b.bg", "industry": "IT"},
		{"name": "Gamma", "identifier": "C", "phone": "0888", "email": "c@c.bg", "industry": "IT"}
	]`)
	idPrefix := fmt.Sprintf("lead-%d-", clock.UnixNano())
	oracle.On(validation.Operation, fmt.Sprintf(
		`[{"id":"%s1","status":"inactive"}]`, idPrefix))

	disc, err := discovery.NewClient(oracle, discovery.DefaultConfig())
	require.NoError(t, err)
	disc.SetClock(fixedNow)
	val, err := validation.NewClient(oracle, validation.DefaultConfig())
	require.NoError(t, err)
	val.SetClock(fixedNow)

	store := history.NewMemoryStoreWith("A")
	s, err := New(context.Background(), Config{
		Store:      store,
		Discoverer: disc,
		Validator:  val,
		Dedup:      deduplication.DefaultConfig(),
		Now:        fixedNow,
	})
	require.NoError(t, err)

	require.NoError(t, s.Search(context.Background(), search()))

	leads := s.Leads()
	assert.Equal(t, []string{"B", "C"}, identifiersOf(leads))
	assert.Equal(t, []types.LeadStatus{types.StatusInactive, types.StatusActive}, statusesOf(leads))
	assert.Equal(t, []string{"A", "B", "C"}, storedHistory(t, store))

	requests := oracle.Requests()
	require.Len(t, requests, 2)
	assert.Contains(t, requests[0].Prompt, "(EIKs): A.")
	assert.NotContains(t, requests[1].Prompt, `"name":"Alpha"`)
}

func TestSearch_NamelessCandidatesReachHistory(t *testing.T) {
	oracle := aitest.New()
	oracle.On(discovery.Operation, `[{"identifier":"Z","phone":"1","email":"e","industry":"x"},{"name":"","identifier":"Y"}]`)
	oracle.On(validation.Operation, `[]`)

	disc, err := discovery.NewClient(oracle, discovery.DefaultConfig())
	require.NoError(t, err)
	val, err := validation.NewClient(oracle, validation.DefaultConfig())
	require.NoError(t, err)

	store := history.NewMemoryStore()
	s, err := New(context.Background(), Config{
		Store:      store,
		Discoverer: disc,
		Validator:  val,
		Dedup:      deduplication.DefaultConfig(),
		Now:        fixedNow,
	})
	require.NoError(t, err)

	require.NoError(t, s.Search(context.Background(), search()))
	assert.Equal(t, []string{"Z", "Y"}, identifiersOf(s.Leads()))
	assert.Equal(t, []string{"Y", "Z"}, storedHistory(t, store))
	assert.Equal(t, 2, s.LastRun().Kept)
}
