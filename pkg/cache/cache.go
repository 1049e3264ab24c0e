// Package cache provides byte caches for analysis reports and rendered
// diagrams.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI.
//   - [RedisCache]: shared cache for multiple API instances.
//   - [NullCache]: never stores anything; used when caching is disabled.
//
// # Keys
//
// Keys are built by a [Keyer] from the content hash of a snapshot plus the
// options that influence the cached value, so an edited layout never hits a
// stale entry. [NewScopedKeyer] adds a prefix to keep several venues or
// tenants apart in one shared backend.
package cache

import (
	"context"
	"time"
)

// Default time-to-live per entry kind.
const (
	TTLReport  = 24 * time.Hour
	TTLDiagram = 7 * 24 * time.Hour
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// DiagramKeyOpts are the render options that change diagram output.
type DiagramKeyOpts struct {
	Format   string   `json:"format"`
	Detailed bool     `json:"detailed,omitempty"`
	Pinned   bool     `json:"pinned,omitempty"`
	Kinds    []string `json:"kinds,omitempty"`
	Status   string   `json:"status,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ReportKey returns the key of an analysis report ("power" or "patch")
	// for a snapshot hash.
	ReportKey(analysis, snapshotHash string) string

	// DiagramKey returns the key of a rendered diagram.
	DiagramKey(snapshotHash string, opts DiagramKeyOpts) string
}

// DefaultKeyer is the unscoped [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ReportKey implements Keyer.
func (DefaultKeyer) ReportKey(analysis, snapshotHash string) string {
	return "report:" + analysis + ":" + snapshotHash
}

// DiagramKey implements Keyer.
func (DefaultKeyer) DiagramKey(snapshotHash string, opts DiagramKeyOpts) string {
	return hashKey("diagram", snapshotHash, opts)
}
