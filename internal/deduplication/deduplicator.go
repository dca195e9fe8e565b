package deduplication

import (
	"fmt"

	"github.com/leadscout/leadscout/internal/types"
)

// Deduplicator filters a discovery batch against History.
//
// Example usage:
//
//	dedup := NewDeduplicator(DefaultConfig())
//	result := dedup.Deduplicate(discovered, history)
//	log.Printf("Unique: %d, Seen before: %d, Repeats: %d",
//	    result.Stats.UniqueCount, result.Stats.DuplicateCount,
//	    result.Stats.WithinBatchDuplicateCount)
type Deduplicator struct {
	config Config
}

// NewDeduplicator creates a deduplicator with the given configuration.
func NewDeduplicator(cfg Config) *Deduplicator {
	return &Deduplicator{config: cfg}
}

// Config returns the deduplicator's configuration.
func (d *Deduplicator) Config() Config {
	return d.config
}

// Result represents the result of filtering one batch
type Result struct {
	// UniqueLeads are the leads that survive, in their original order.
	// The pointers are the caller's own; nothing is copied.
	UniqueLeads []*types.Lead `json:"unique_leads"`

	// DuplicatePairs maps a candidate index to the History identifier it matched
	DuplicatePairs map[int]string `json:"duplicate_pairs"`

	// WithinBatchDuplicates maps a candidate index to the index of the first
	// candidate carrying the same identifier
	WithinBatchDuplicates map[int]int `json:"within_batch_duplicates,omitempty"`

	Stats Stats `json:"stats"`
}

// Stats summarises one filtering pass
type Stats struct {
	// TotalCandidates is the number of non-nil leads checked
	TotalCandidates int `json:"total_candidates"`

	// UniqueCount is the number of leads kept
	UniqueCount int `json:"unique_count"`

	// DuplicateCount is the number of leads dropped because History had them
	DuplicateCount int `json:"duplicate_count"`

	// WithinBatchDuplicateCount is the number of repeats dropped inside the batch
	WithinBatchDuplicateCount int `json:"within_batch_duplicate_count"`

	// MissingIdentifierCount is the number of kept leads with no identifier
	MissingIdentifierCount int `json:"missing_identifier_count"`
}

// Deduplicate filters candidates against history. Nil candidates are
// skipped. history is only read.
func (d *Deduplicator) Deduplicate(candidates []*types.Lead, history types.IdentifierSet) *Result {
	result := &Result{
		UniqueLeads:           make([]*types.Lead, 0, len(candidates)),
		DuplicatePairs:        make(map[int]string),
		WithinBatchDuplicates: make(map[int]int),
	}

	firstSeen := make(map[string]int)
	for i, lead := range candidates {
		if lead == nil {
			continue
		}
		result.Stats.TotalCandidates++

		if !lead.HasIdentifier() {
			result.Stats.MissingIdentifierCount++
			result.UniqueLeads = append(result.UniqueLeads, lead)
			continue
		}

		if history.Has(lead.Identifier) {
			result.DuplicatePairs[i] = lead.Identifier
			continue
		}

		if d.config.EnableWithinBatchDedup {
			if first, ok := firstSeen[lead.Identifier]; ok {
				result.WithinBatchDuplicates[i] = first
				continue
			}
			firstSeen[lead.Identifier] = i
		}

		result.UniqueLeads = append(result.UniqueLeads, lead)
	}

	result.Stats.UniqueCount = len(result.UniqueLeads)
	result.Stats.DuplicateCount = len(result.DuplicatePairs)
	result.Stats.WithinBatchDuplicateCount = len(result.WithinBatchDuplicates)
	return result
}

// Validate checks that the result is internally consistent
func (r *Result) Validate() error {
	uniqueCount := len(r.UniqueLeads)
	duplicateCount := len(r.DuplicatePairs)
	withinBatchCount := len(r.WithinBatchDuplicates)

	if r.Stats.UniqueCount != uniqueCount {
		return fmt.Errorf("stats.unique_count (%d) does not match unique_leads length (%d)",
			r.Stats.UniqueCount, uniqueCount)
	}
	if r.Stats.DuplicateCount != duplicateCount {
		return fmt.Errorf("stats.duplicate_count (%d) does not match duplicate_pairs length (%d)",
			r.Stats.DuplicateCount, duplicateCount)
	}
	if r.Stats.WithinBatchDuplicateCount != withinBatchCount {
		return fmt.Errorf("stats.within_batch_duplicate_count (%d) does not match within_batch_duplicates length (%d)",
			r.Stats.WithinBatchDuplicateCount, withinBatchCount)
	}

	total := uniqueCount + duplicateCount + withinBatchCount
	if r.Stats.TotalCandidates != total {
		return fmt.Errorf("stats.total_candidates (%d) does not match sum of unique + duplicates + within_batch (%d)",
			r.Stats.TotalCandidates, total)
	}

	for dupIdx, origIdx := range r.WithinBatchDuplicates {
		if dupIdx <= origIdx {
			return fmt.Errorf("within_batch_duplicates: duplicate index %d must be > original index %d",
				dupIdx, origIdx)
		}
		if _, exists := r.DuplicatePairs[dupIdx]; exists {
			return fmt.Errorf("index %d appears in both duplicate_pairs and within_batch_duplicates", dupIdx)
		}
		if _, exists := r.DuplicatePairs[origIdx]; exists {
			return fmt.Errorf("within_batch_duplicates references index %d as original, but it appears in duplicate_pairs", origIdx)
		}
	}

	return nil
}

// Dropped returns how many candidates were filtered out for any reason.
func (r *Result) Dropped() int {
	return r.Stats.DuplicateCount + r.Stats.WithinBatchDuplicateCount
}
