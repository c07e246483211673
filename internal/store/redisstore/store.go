// Package redisstore is a store.Backend on Redis. Several circled processes
// may share one Redis; appends from all of them are serialised per key with
// optimistic WATCH/MULTI transactions.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/safetrip/travel-circle/internal/store"
)

const (
	// KeyPrefix namespaces sequence keys, e.g. circle:seq:match_requests.
	KeyPrefix = "circle:seq:"

	// maxTxRetries bounds how often Update retries after a concurrent write
	// invalidated its WATCH.
	maxTxRetries = 100
)

// ErrContended is returned when Update kept losing the optimistic lock.
var ErrContended = errors.New("redisstore: too many concurrent writers")

// Store is a Redis-backed store.Backend.
type Store struct {
	rdb *redis.Client
}

var _ store.Backend = (*Store)(nil)

// New wraps an existing client. Closing the Store closes the client.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Get returns the value for key, or nil if it does not exist.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redisstore: get %s: %w", key, err)
	}
	return data, nil
}

// Update reads the key under WATCH, applies fn and writes the result in a
// MULTI block. If another client wrote the key in between, the transaction
// is retried with the fresh value.
func (s *Store) Update(ctx context.Context, key string, fn store.UpdateFunc) error {
	redisKey := KeyPrefix + key

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, redisKey).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, redisKey, next, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.rdb.Watch(ctx, txf, redisKey)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}

	log.Printf("[store] redis update of %s gave up after %d retries", key, maxTxRetries)
	return ErrContended
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.rdb.Close()
}
