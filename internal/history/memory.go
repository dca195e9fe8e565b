package history

import (
	"context"
	"sync"

	"github.com/leadscout/leadscout/internal/types"
)

// MemoryStore keeps the encoded payload in memory. It goes through the same
// Encode/Decode path as the durable backends, so tests can seed it with a
// malformed payload.
type MemoryStore struct {
	mu      sync.Mutex
	payload []byte
	saves   int
	saveErr error
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWith returns a store holding ids.
func NewMemoryStoreWith(ids ...string) *MemoryStore {
	s := &MemoryStore{}
	s.payload, _ = Encode(types.NewIdentifierSet(ids...))
	return s
}

// SetRaw replaces the stored payload verbatim.
func (s *MemoryStore) SetRaw(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = append([]byte(nil), payload...)
}

// Raw returns the stored payload.
func (s *MemoryStore) Raw() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.payload...)
}

// FailSaves makes every later Save and Clear return err (nil to stop).
func (s *MemoryStore) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// Saves counts successful Save and Clear calls.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Load implements Store.
func (s *MemoryStore) Load(ctx context.Context) (types.IdentifierSet, error) {
	return Decode(s.Raw(), "memory"), nil
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, ids types.IdentifierSet) error {
	payload, err := Encode(ids)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.payload = payload
	s.saves++
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(ctx context.Context) error {
	return s.Save(ctx, types.NewIdentifierSet())
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
