package deduplication

import "fmt"

// Config holds configuration for the deduplication filter
type Config struct {
	// EnableWithinBatchDedup drops repeats of the same identifier inside one
	// discovery batch, keeping the first occurrence.
	// Default: false. History is the only filter unless this is turned on.
	EnableWithinBatchDedup bool
}

// DefaultConfig returns the default deduplication configuration
func DefaultConfig() Config {
	return Config{
		EnableWithinBatchDedup: false,
	}
}

// String returns a human-readable representation of the config
func (c Config) String() string {
	return fmt.Sprintf("Config{WithinBatch: %t}", c.EnableWithinBatchDedup)
}
