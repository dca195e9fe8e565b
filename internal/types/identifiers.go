package types

import "sort"

// IdentifierSet is an unordered set of registry identifiers.
// The zero value is an empty set that is safe to read; use NewIdentifierSet
// or Add on a non-nil set before writing.
type IdentifierSet map[string]struct{}

// NewIdentifierSet builds a set from ids, skipping empty strings.
func NewIdentifierSet(ids ...string) IdentifierSet {
	s := make(IdentifierSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Has reports whether id is in the set. The empty identifier is never a member.
func (s IdentifierSet) Has(id string) bool {
	if id == "" {
		return false
	}
	_, ok := s[id]
	return ok
}

// Add inserts id and reports whether the set grew.
func (s IdentifierSet) Add(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Union adds every member of other to s and returns how many were new.
func (s IdentifierSet) Union(other IdentifierSet) int {
	added := 0
	for id := range other {
		if s.Add(id) {
			added++
		}
	}
	return added
}

// Len returns the number of identifiers.
func (s IdentifierSet) Len() int {
	return len(s)
}

// Clone returns an independent copy. Cloning a nil set yields an empty set.
func (s IdentifierSet) Clone() IdentifierSet {
	c := make(IdentifierSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Sorted returns the members in lexical order.
func (s IdentifierSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// IdentifiersOf collects the non-empty identifiers of leads.
func IdentifiersOf(leads []*Lead) IdentifierSet {
	s := make(IdentifierSet, len(leads))
	for _, l := range leads {
		if l != nil {
			s.Add(l.Identifier)
		}
	}
	return s
}
