package types

// SessionState is the position of a lead session in its search pipeline
//
// A session moves through:
//
//	idle -> searching -> validating -> completed
//
// and can drop to error from idle, searching or validating. Neither
// completed nor error is terminal: the next search starts the cycle again.
type SessionState string

const (
	// StateIdle is the state of a fresh session that has never searched
	StateIdle SessionState = "idle"

	// StateSearching means the discovery call is in flight
	StateSearching SessionState = "searching"

	// StateValidating means discovery finished and the validation call is in flight
	StateValidating SessionState = "validating"

	// StateCompleted means the last run finished (with or without validation)
	StateCompleted SessionState = "completed"

	// StateError means the last run failed; see the session's LastError
	StateError SessionState = "error"
)

// IsValid checks if the state value is valid
func (s SessionState) IsValid() bool {
	switch s {
	case StateIdle, StateSearching, StateValidating, StateCompleted, StateError:
		return true
	}
	return false
}

// IsBusy returns true while a pipeline run is in flight
func (s SessionState) IsBusy() bool {
	return s == StateSearching || s == StateValidating
}

// CanSearch returns true if a new search may start from this state
func (s SessionState) CanSearch() bool {
	return s == StateIdle || s == StateCompleted || s == StateError
}
