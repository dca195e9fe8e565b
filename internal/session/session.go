// Package session runs the lead search pipeline and owns its state.
//
// A Session ties together History (the durable set of identifiers already
// shown to the user), the working set of the current run, and the discovery
// and validation clients. One search runs at a time:
//
//	idle|completed|error -> searching -> validating -> completed
//	                          |             |
//	                          +--> error <--+
//
// A run discovers candidates with History as exclusions, drops anything
// History already has, validates the survivors, and only then folds their
// identifiers into History and persists it. A failure at any step leaves
// History and the working set exactly as they were before that step.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leadscout/leadscout/internal/deduplication"
	"github.com/leadscout/leadscout/internal/events"
	"github.com/leadscout/leadscout/internal/history"
	"github.com/leadscout/leadscout/internal/types"
	"github.com/leadscout/leadscout/internal/validation"
)

// ErrBusy is returned when an operation needs the session idle but a search
// is in flight.
var ErrBusy = errors.New("a search is already in progress")

// Discoverer finds candidate leads. Implemented by *discovery.Client.
type Discoverer interface {
	Discover(ctx context.Context, filters types.SearchFilters) ([]*types.Lead, error)
}

// Validator refreshes lead statuses. Implemented by *validation.Client.
// It must return one lead per input lead, in order.
type Validator interface {
	ValidateWithReport(ctx context.Context, leads []*types.Lead) ([]*types.Lead, validation.Report)
}

// Config wires a Session.
type Config struct {
	Store      history.Store
	Discoverer Discoverer
	Validator  Validator

	// Observer receives every event; optional.
	Observer Observer

	// Dedup configures the History filter.
	Dedup deduplication.Config

	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// Session is one user's lead search workspace.
type Session struct {
	store      history.Store
	discoverer Discoverer
	validator  Validator
	observer   Observer
	dedup      *deduplication.Deduplicator
	now        func() time.Time

	mu      sync.Mutex
	state   types.SessionState
	lastErr string
	leads   []*types.Lead
	history types.IdentifierSet
	lastRun *RunSummary
}

// New creates a session and loads History from the store. A missing or
// malformed payload starts an empty History; only a storage failure is an
// error.
func New(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("history store cannot be nil")
	}
	if cfg.Discoverer == nil {
		return nil, fmt.Errorf("discoverer cannot be nil")
	}
	if cfg.Validator == nil {
		return nil, fmt.Errorf("validator cannot be nil")
	}

	hist, err := cfg.Store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	slog.Debug("session started", "history", hist.Len(), "dedup", cfg.Dedup.String())

	return &Session{
		store:      cfg.Store,
		discoverer: cfg.Discoverer,
		validator:  cfg.Validator,
		observer:   cfg.Observer,
		dedup:      deduplication.NewDeduplicator(cfg.Dedup),
		now:        now,
		state:      types.StateIdle,
		leads:      []*types.Lead{},
		history:    hist.Clone(),
	}, nil
}

// Search runs one discovery pipeline. It blocks until the run completes or
// fails. Invalid filters are rejected before any state change. Calling
// Search while another search is running returns ErrBusy.
//
// A discovery failure or a History persistence failure moves the session to
// the error state and is returned. Validation failures are soft: the run
// completes with the discovered statuses.
func (s *Session) Search(ctx context.Context, filters types.SearchFilters) error {
	if err := filters.Validate(); err != nil {
		return fmt.Errorf("invalid search: %w", err)
	}

	s.mu.Lock()
	if !s.state.CanSearch() {
		s.mu.Unlock()
		return ErrBusy
	}
	run := &RunSummary{
		RunID:     uuid.New().String(),
		Filters:   filters,
		StartedAt: s.now(),
	}
	s.lastErr = ""
	exclusions := s.history.Clone()
	from := s.setStateLocked(types.StateSearching)
	s.mu.Unlock()
	s.emitStateChange(run.RunID, from, types.StateSearching)

	discovered, err := s.discoverer.Discover(ctx, filters.WithExclusions(exclusions))
	if err != nil {
		return s.fail(run, err)
	}
	run.Discovered = len(discovered)
	s.emitData(events.EventTypeDiscoveryCompleted, run.RunID, events.SeverityInfo,
		fmt.Sprintf("discovered %d leads", len(discovered)),
		events.DiscoveryCompletedData{
			Industry:  filters.Industry,
			City:      filters.City,
			Requested: filters.Limit,
			Returned:  len(discovered),
			Excluded:  exclusions.Len(),
		})

	result := s.dedup.Deduplicate(discovered, exclusions)
	if err := result.Validate(); err != nil {
		slog.Error("inconsistent deduplication result", "run", run.RunID, "error", err)
	}
	run.FilteredOut = result.Stats.DuplicateCount
	run.WithinBatchDuplicates = result.Stats.WithinBatchDuplicateCount
	run.Kept = len(result.UniqueLeads)
	s.emitData(events.EventTypeDeduplicationCompleted, run.RunID, events.SeverityInfo,
		fmt.Sprintf("kept %d of %d leads (%d dropped)", run.Kept, result.Stats.TotalCandidates, result.Dropped()),
		events.DeduplicationCompletedData{
			Candidates:            result.Stats.TotalCandidates,
			Kept:                  run.Kept,
			SeenBefore:            run.FilteredOut,
			WithinBatchDuplicates: run.WithinBatchDuplicates,
		})

	kept := cloneLeads(result.UniqueLeads)
	s.mu.Lock()
	s.leads = kept
	s.mu.Unlock()

	if len(kept) == 0 {
		return s.complete(run)
	}

	s.transition(run.RunID, types.StateValidating)
	validated, report := s.validator.ValidateWithReport(ctx, cloneLeads(kept))
	validated, report = reconcile(kept, validated, report)
	run.Validated = report.Matched
	run.StatusChanges = report.Changed
	run.ValidationDegraded = report.Degraded
	s.emitValidation(run.RunID, report)

	s.mu.Lock()
	s.leads = validated
	updated := s.history.Clone()
	s.mu.Unlock()

	added := updated.Union(types.IdentifiersOf(validated))
	if added > 0 {
		// The results are already on screen; a cancelled caller must not
		// leave them out of History.
		if err := s.store.Save(context.WithoutCancel(ctx), updated); err != nil {
			return s.fail(run, fmt.Errorf("persisting history: %w", err))
		}
		s.mu.Lock()
		s.history = updated
		s.mu.Unlock()
		s.emitData(events.EventTypeHistoryUpdated, run.RunID, events.SeverityInfo,
			fmt.Sprintf("%d identifiers added to history", added),
			events.HistoryUpdatedData{Added: added, Total: updated.Len()})
	}
	run.HistoryAdded = added

	return s.complete(run)
}

// DeleteLead removes the lead with the given ID from the working set. History
// is not touched. It reports whether a lead was removed.
func (s *Session) DeleteLead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.leads {
		if l.ID == id {
			next := make([]*types.Lead, 0, len(s.leads)-1)
			next = append(next, s.leads[:i]...)
			next = append(next, s.leads[i+1:]...)
			s.leads = next
			return true
		}
	}
	return false
}

// ClearLeads empties the working set. History is not touched.
func (s *Session) ClearLeads() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads = []*types.Lead{}
}

// ResetHistory clears History in memory and in the store. The working set is
// left alone. It returns ErrBusy while a search is running.
func (s *Session) ResetHistory(ctx context.Context) error {
	s.mu.Lock()
	if s.state.IsBusy() {
		s.mu.Unlock()
		return ErrBusy
	}
	cleared := s.history.Len()
	if err := s.store.Clear(ctx); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("clearing history: %w", err)
	}
	s.history = types.NewIdentifierSet()
	s.mu.Unlock()

	slog.Info("history reset", "cleared", cleared)
	s.emit(events.NewSimpleEvent(events.EventTypeHistoryReset, "", events.SeverityInfo,
		fmt.Sprintf("history reset (%d identifiers cleared)", cleared)))
	return nil
}

// State returns the current state.
func (s *Session) State() types.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError returns the message of the last failed run, or "" if the last
// run did not fail.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Leads returns a copy of the working set.
func (s *Session) Leads() []*types.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneLeads(s.leads)
}

// History returns a copy of History.
func (s *Session) History() types.IdentifierSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Clone()
}

// HistoryCount returns the number of identifiers in History.
func (s *Session) HistoryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Len()
}

// LastRun returns the summary of the most recent run, or nil before the first.
func (s *Session) LastRun() *RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun == nil {
		return nil
	}
	r := *s.lastRun
	return &r
}

func (s *Session) complete(run *RunSummary) error {
	run.Duration = s.now().Sub(run.StartedAt)

	s.mu.Lock()
	s.lastRun = run
	from := s.setStateLocked(types.StateCompleted)
	s.mu.Unlock()

	slog.Info("search completed", "run", run.RunID, "summary", run.String())
	s.emitStateChange(run.RunID, from, types.StateCompleted)
	return nil
}

func (s *Session) fail(run *RunSummary, err error) error {
	run.Duration = s.now().Sub(run.StartedAt)
	run.Err = err.Error()

	s.mu.Lock()
	s.lastErr = err.Error()
	s.lastRun = run
	from := s.setStateLocked(types.StateError)
	s.mu.Unlock()

	slog.Warn("search failed", "run", run.RunID, "state", from, "error", err)
	s.emitStateChange(run.RunID, from, types.StateError)
	s.emit(events.NewSimpleEvent(events.EventTypeRunFailed, run.RunID, events.SeverityError, err.Error()))
	return err
}

func (s *Session) transition(runID string, to types.SessionState) {
	s.mu.Lock()
	from := s.setStateLocked(to)
	s.mu.Unlock()
	s.emitStateChange(runID, from, to)
}

// setStateLocked sets the state and returns the previous one. Caller holds mu.
func (s *Session) setStateLocked(to types.SessionState) types.SessionState {
	from := s.state
	s.state = to
	return from
}

func (s *Session) emitStateChange(runID string, from, to types.SessionState) {
	ev, err := events.NewStateChangeEvent(runID, string(from), string(to))
	if err != nil {
		slog.Error("building state change event", "error", err)
		return
	}
	s.emit(ev)
}

func (s *Session) emitValidation(runID string, report validation.Report) {
	data := events.ValidationCompletedData{
		Total:    report.Total,
		Matched:  report.Matched,
		Changed:  report.Changed,
		Degraded: report.Degraded,
	}
	if report.Err != nil {
		data.Error = report.Err.Error()
	}
	if report.Degraded {
		s.emitData(events.EventTypeValidationDegraded, runID, events.SeverityWarning,
			"validation unavailable, keeping discovered statuses", data)
		return
	}
	s.emitData(events.EventTypeValidationCompleted, runID, events.SeverityInfo,
		fmt.Sprintf("%d statuses changed", report.Changed), data)
}

func (s *Session) emitData(t events.EventType, runID string, sev events.EventSeverity, msg string, data interface{}) {
	ev, err := events.NewDataEvent(t, runID, sev, msg, data)
	if err != nil {
		slog.Error("building session event", "type", t, "error", err)
		return
	}
	s.emit(ev)
}

func (s *Session) emit(ev *events.Event) {
	if s.observer == nil || ev == nil {
		return
	}
	ev.Timestamp = s.now()
	s.observer.OnEvent(ev)
}

// reconcile guards the pipeline against a Validator that breaks its
// contract: a result of the wrong length is discarded and nil entries fall
// back to the input lead.
func reconcile(in, out []*types.Lead, report validation.Report) ([]*types.Lead, validation.Report) {
	if len(out) != len(in) {
		slog.Warn("validator returned wrong number of leads, ignoring its result",
			"sent", len(in), "got", len(out))
		return in, validation.Report{
			Total:    len(in),
			Degraded: true,
			Err:      fmt.Errorf("validator returned %d leads for %d", len(out), len(in)),
		}
	}
	for i := range out {
		if out[i] == nil {
			out[i] = in[i]
		}
	}
	return out, report
}

func cloneLeads(leads []*types.Lead) []*types.Lead {
	out := make([]*types.Lead, 0, len(leads))
	for _, l := range leads {
		if l != nil {
			out = append(out, l.Clone())
		}
	}
	return out
}
