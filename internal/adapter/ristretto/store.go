// Package ristretto implements the planstore port using
// dgraph-io/ristretto as an in-process TTL-evicting store.
package ristretto

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/Strob0t/PlanForge/internal/domain"
	"github.com/Strob0t/PlanForge/internal/domain/plan"
)

// Store keeps plan-generation status records in a ristretto cache.
// TTL eviction bounds retention, so completed entries do not accumulate
// for the lifetime of the process.
type Store struct {
	c *ristretto.Cache[string, plan.Status]
}

// New creates a ristretto-backed status store holding at most maxEntries
// records.
func New(maxEntries int64) (*Store, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, plan.Status]{
		NumCounters: maxEntries * 10, // ~10x expected items
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Store{c: c}, nil
}

// Set stores a status record with the given TTL. Writes are applied
// synchronously so a status update is visible to an immediate poll. A
// write the cache refuses to admit is reported here rather than
// surfacing later as a spurious ErrNotFound.
func (s *Store) Set(_ context.Context, id string, status plan.Status, ttl time.Duration) error {
	if !s.c.SetWithTTL(id, status, 1, ttl) {
		return fmt.Errorf("status write dropped for plan %s", id)
	}
	s.c.Wait()
	// The buffer accepting the write does not guarantee admission.
	if _, found := s.c.Get(id); !found {
		return fmt.Errorf("status write not admitted for plan %s", id)
	}
	return nil
}

// Get retrieves a status record. Unknown or expired ids yield
// domain.ErrNotFound.
func (s *Store) Get(_ context.Context, id string) (*plan.Status, error) {
	st, found := s.c.Get(id)
	if !found {
		return nil, domain.ErrNotFound
	}
	return &st, nil
}

// Delete removes a status record.
func (s *Store) Delete(_ context.Context, id string) error {
	s.c.Del(id)
	return nil
}

// Close shuts down the store and releases resources.
func (s *Store) Close() {
	s.c.Close()
}
