// Package cache stores rendered drawings and artifacts.
//
// # Overview
//
// Rendering a flow graph runs in two cacheable stages:
//
//  1. Drawing: graph + component manifests + render options → DOT source
//  2. Artifact: DOT source + output format → bytes (svg, png, ...)
//
// A [Keyer] derives content-addressed keys for both stages, so a changed
// graph, manifest or option never hits a stale entry.
//
// # Backends
//
//   - [FileCache]: one file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for the HTTP service
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss returns (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per stage.
const (
	DrawingTTL  = 7 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)
