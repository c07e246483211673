// Package store persists append-only record sequences under string keys.
// Each key holds a JSON array. The storage medium is a pluggable Backend:
// memory for tests, bbolt for a single-node file, Redis or Postgres when
// several processes share the same lists.
package store

import (
	"context"
	"errors"
)

// Keys of the persisted sequences.
const (
	KeyTravelCircles = "travel_circles"
	KeyMatchRequests = "match_requests"
	KeyJoinRequests  = "join_requests"
	KeyTravelGroups  = "travel_groups"
)

// ErrNotConfigured is returned when a store is used without a backend.
var ErrNotConfigured = errors.New("store: backend is not configured")

// UpdateFunc receives the current raw value of a key (nil when absent) and
// returns the value to write back.
type UpdateFunc func(current []byte) ([]byte, error)

// Backend is a byte-oriented key-value medium.
//
// Update must run fn and write its result as one critical section per key:
// no other Update of the same key may interleave between the read and the
// write. If fn returns an error nothing is written.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Close() error
}
