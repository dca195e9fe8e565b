package types

import (
	"fmt"
	"strings"
	"time"
)

// Lead is a business-contact record found by discovery.
//
// ID is minted per discovery batch and only has meaning inside one working
// set. Identifier is the registry code of the business and is the only field
// compared across sessions.
type Lead struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Identifier  string     `json:"identifier,omitempty"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email"`
	Address     string     `json:"address,omitempty"`
	Website     string     `json:"website,omitempty"`
	Industry    string     `json:"industry"`
	Status      LeadStatus `json:"status"`
	Source      string     `json:"source"`
	LastUpdated time.Time  `json:"last_updated"`
}

// Clone returns a shallow copy of the lead (all fields are values).
func (l *Lead) Clone() *Lead {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

// HasIdentifier reports whether the lead carries a dedup key.
func (l *Lead) HasIdentifier() bool {
	return l.Identifier != ""
}

// LeadStatus is the validation outcome of a lead
type LeadStatus string

const (
	StatusActive   LeadStatus = "active"
	StatusInactive LeadStatus = "inactive"
	StatusPending  LeadStatus = "pending"
)

// IsValid checks if the status value is valid
func (s LeadStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending:
		return true
	}
	return false
}

// AllowedLimits are the result counts a search may request.
var AllowedLimits = []int{50, 100, 200}

// DefaultLimit is used when a search does not specify a limit.
const DefaultLimit = 50

// IsAllowedLimit reports whether n is one of AllowedLimits.
func IsAllowedLimit(n int) bool {
	for _, l := range AllowedLimits {
		if l == n {
			return true
		}
	}
	return false
}

// SearchFilters describes one discovery request.
type SearchFilters struct {
	Industry            string        `json:"industry"`
	City                string        `json:"city"`
	Limit               int           `json:"limit"`
	ExcludedIdentifiers IdentifierSet `json:"excluded_identifiers,omitempty"`
}

// Validate checks the user-supplied part of the filters. Exclusions are
// filled in by the session and are not checked here.
func (f SearchFilters) Validate() error {
	if strings.TrimSpace(f.Industry) == "" {
		return fmt.Errorf("industry is required")
	}
	if strings.TrimSpace(f.City) == "" {
		return fmt.Errorf("city is required")
	}
	if !IsAllowedLimit(f.Limit) {
		return fmt.Errorf("limit must be one of %v (got %d)", AllowedLimits, f.Limit)
	}
	return nil
}

// WithExclusions returns a copy of f that excludes the given identifiers.
func (f SearchFilters) WithExclusions(ids IdentifierSet) SearchFilters {
	f.ExcludedIdentifiers = ids.Clone()
	return f
}
