package events

import (
	"time"

	"github.com/google/uuid"
)

// NewSimpleEvent creates an Event with no structured data.
func NewSimpleEvent(eventType EventType, runID string, severity EventSeverity, message string) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		RunID:     runID,
		Severity:  severity,
		Message:   message,
		Data:      make(map[string]interface{}),
	}
}

// NewStateChangeEvent creates a state change event. Transitions into the
// error state carry error severity.
func NewStateChangeEvent(runID, from, to string) (*Event, error) {
	severity := SeverityInfo
	if to == "error" {
		severity = SeverityError
	}
	event := NewSimpleEvent(EventTypeStateChange, runID, severity, from+" -> "+to)
	if err := event.SetData(StateChangeData{From: from, To: to}); err != nil {
		return nil, err
	}
	return event, nil
}

// NewDataEvent creates an Event carrying the given structured data.
func NewDataEvent(eventType EventType, runID string, severity EventSeverity, message string, data interface{}) (*Event, error) {
	event := NewSimpleEvent(eventType, runID, severity, message)
	if err := event.SetData(data); err != nil {
		return nil, err
	}
	return event, nil
}
