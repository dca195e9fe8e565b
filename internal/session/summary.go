package session

import (
	"fmt"
	"time"

	"github.com/leadscout/leadscout/internal/types"
)

// RunSummary describes the most recent search run.
type RunSummary struct {
	RunID   string
	Filters types.SearchFilters

	Discovered            int // leads returned by discovery
	FilteredOut           int // dropped because History had them
	WithinBatchDuplicates int // dropped as repeats inside the batch
	Kept                  int // leads in the working set after filtering

	Validated          int // leads with a validation verdict
	StatusChanges      int
	ValidationDegraded bool
	HistoryAdded       int

	StartedAt time.Time
	Duration  time.Duration
	Err       string
}

// Succeeded reports whether the run reached the completed state.
func (r RunSummary) Succeeded() bool {
	return r.Err == ""
}

// String renders a one-line summary.
func (r RunSummary) String() string {
	if !r.Succeeded() {
		return fmt.Sprintf("run %s failed after %v: %s", shortID(r.RunID), r.Duration.Round(time.Millisecond), r.Err)
	}
	s := fmt.Sprintf("%d discovered, %d already seen, ", r.Discovered, r.FilteredOut)
	if r.WithinBatchDuplicates > 0 {
		s += fmt.Sprintf("%d repeats, ", r.WithinBatchDuplicates)
	}
	s += fmt.Sprintf("%d kept, %d status changes, %d new in history (%v)",
		r.Kept, r.StatusChanges, r.HistoryAdded, r.Duration.Round(time.Millisecond))
	if r.ValidationDegraded {
		s += ", validation skipped"
	}
	return s
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
