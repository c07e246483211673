package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

// Sequence is an ordered, append-only list of records of type T stored as a
// JSON array under a single key.
type Sequence[T any] struct {
	backend Backend
	key     string
}

// NewSequence binds a sequence to a key of the backend.
func NewSequence[T any](backend Backend, key string) *Sequence[T] {
	return &Sequence[T]{backend: backend, key: key}
}

// Key returns the key the sequence is stored under.
func (s *Sequence[T]) Key() string {
	return s.key
}

// Append adds rec at the end of the sequence and returns the new length.
// A missing or unparsable stored value is treated as an empty sequence, so
// appending to a corrupt key leaves a one-element sequence behind.
func (s *Sequence[T]) Append(ctx context.Context, rec T) (int, error) {
	if s == nil || s.backend == nil {
		return 0, ErrNotConfigured
	}

	var length int
	err := s.backend.Update(ctx, s.key, func(current []byte) ([]byte, error) {
		records := decode[T](s.key, current)
		records = append(records, rec)
		length = len(records)

		data, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("store: marshal %s: %w", s.key, err)
		}
		return data, nil
	})
	if err != nil {
		return 0, fmt.Errorf("store: append %s: %w", s.key, err)
	}
	return length, nil
}

// List returns every record in insertion order.
func (s *Sequence[T]) List(ctx context.Context) ([]T, error) {
	if s == nil || s.backend == nil {
		return nil, ErrNotConfigured
	}

	data, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", s.key, err)
	}
	return decode[T](s.key, data), nil
}

// decode never fails: a value that is not a JSON array of T is logged and
// read as empty.
func decode[T any](key string, data []byte) []T {
	records := []T{}
	if len(data) == 0 {
		return records
	}
	if err := json.Unmarshal(data, &records); err != nil || records == nil {
		if err != nil {
			log.Printf("[store] malformed value under %s, treating as empty: %v", key, err)
		}
		return []T{}
	}
	return records
}
