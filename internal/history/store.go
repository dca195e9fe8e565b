// Package history persists the set of identifiers already surfaced to the user.
//
// History is a plain set: no ordering, no per-entry metadata. It only grows,
// except for an explicit Clear. Every backend stores it the same way, as a
// JSON array of identifier strings under one key, and every backend treats a
// missing or malformed payload as an empty set rather than an error.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/leadscout/leadscout/internal/types"
)

// Key is the storage key holding the encoded identifier set.
const Key = "history_identifiers"

// Store is the durable home of History.
type Store interface {
	// Load returns the persisted set. A missing or malformed payload yields
	// an empty set and no error; only storage failures are returned.
	Load(ctx context.Context) (types.IdentifierSet, error)

	// Save overwrites the persisted set.
	Save(ctx context.Context, ids types.IdentifierSet) error

	// Clear persists the empty set. There is no undo.
	Clear(ctx context.Context) error

	// Close releases the backend.
	Close() error
}

// Encode renders ids as a sorted JSON array so the stored payload is stable.
func Encode(ids types.IdentifierSet) ([]byte, error) {
	return json.Marshal(ids.Sorted())
}

// Decode parses a stored payload. Empty input and anything that is not a
// JSON array of strings decode to an empty set; source names the backend in
// the warning logged for malformed payloads.
func Decode(payload []byte, source string) types.IdentifierSet {
	if len(payload) == 0 {
		return types.NewIdentifierSet()
	}
	var ids []string
	if err := json.Unmarshal(payload, &ids); err != nil {
		slog.Warn("ignoring malformed history payload",
			"source", source, "error", err, "bytes", len(payload))
		return types.NewIdentifierSet()
	}
	return types.NewIdentifierSet(ids...)
}

// Backend names accepted in configuration.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Open creates the named backend at path. Memory ignores path.
func Open(ctx context.Context, backend, path string) (Store, error) {
	switch backend {
	case BackendSQLite, "":
		return OpenSQLite(ctx, path)
	case BackendFile:
		return NewFileStore(path)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", backend)
	}
}
