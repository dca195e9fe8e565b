// Package events describes what happens inside a lead session.
//
// A session emits one Event per state transition and per pipeline milestone.
// Observers (the REPL, the one-shot search command, tests) receive them in
// order on the goroutine running the search.
package events

import (
	"time"
)

// EventType represents the type of event that occurred during a session.
type EventType string

const (
	// EventTypeStateChange indicates the session moved between states
	EventTypeStateChange EventType = "state_change"
	// EventTypeDiscoveryCompleted indicates the discovery call returned leads
	EventTypeDiscoveryCompleted EventType = "discovery_completed"
	// EventTypeDeduplicationCompleted indicates the History filter ran
	EventTypeDeduplicationCompleted EventType = "deduplication_completed"
	// EventTypeValidationCompleted indicates the validation call finished
	EventTypeValidationCompleted EventType = "validation_completed"
	// EventTypeValidationDegraded indicates validation failed softly and statuses were kept
	EventTypeValidationDegraded EventType = "validation_degraded"
	// EventTypeHistoryUpdated indicates new identifiers were persisted
	EventTypeHistoryUpdated EventType = "history_updated"
	// EventTypeHistoryReset indicates History was cleared
	EventTypeHistoryReset EventType = "history_reset"
	// EventTypeRunFailed indicates a search run ended in the error state
	EventTypeRunFailed EventType = "run_failed"
)

// EventSeverity represents the severity level of an event.
type EventSeverity string

const (
	// SeverityInfo indicates informational events
	SeverityInfo EventSeverity = "info"
	// SeverityWarning indicates degraded but recoverable events
	SeverityWarning EventSeverity = "warning"
	// SeverityError indicates failed runs
	SeverityError EventSeverity = "error"
)

// Event is one thing that happened in a session.
type Event struct {
	// ID is the unique identifier for this event
	ID string `json:"id"`
	// Type is the type of event
	Type EventType `json:"type"`
	// Timestamp is when the event occurred
	Timestamp time.Time `json:"timestamp"`
	// RunID is the search run the event belongs to (empty outside a run)
	RunID string `json:"run_id,omitempty"`
	// Severity is the severity level of this event
	Severity EventSeverity `json:"severity"`
	// Message is a human-readable description of the event
	Message string `json:"message"`
	// Data contains structured, type-specific data (must be JSON-serializable)
	Data map[string]interface{} `json:"data"`
}

// StateChangeData contains structured data for state change events.
type StateChangeData struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// DiscoveryCompletedData contains structured data for discovery events.
type DiscoveryCompletedData struct {
	Industry  string `json:"industry"`
	City      string `json:"city"`
	Requested int    `json:"requested"`
	Returned  int    `json:"returned"`
	Excluded  int    `json:"excluded"`
}

// DeduplicationCompletedData contains structured data for History filter events.
type DeduplicationCompletedData struct {
	Candidates            int `json:"candidates"`
	Kept                  int `json:"kept"`
	SeenBefore            int `json:"seen_before"`
	WithinBatchDuplicates int `json:"within_batch_duplicates"`
}

// ValidationCompletedData contains structured data for validation events.
type ValidationCompletedData struct {
	Total    int    `json:"total"`
	Matched  int    `json:"matched"`
	Changed  int    `json:"changed"`
	Degraded bool   `json:"degraded"`
	Error    string `json:"error,omitempty"`
}

// HistoryUpdatedData contains structured data for History events.
type HistoryUpdatedData struct {
	Added int `json:"added"`
	Total int `json:"total"`
}
