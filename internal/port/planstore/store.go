// Package planstore defines the port interface for the plan status store.
package planstore

import (
	"context"
	"time"

	"github.com/Strob0t/PlanForge/internal/domain/plan"
)

// Store is the port interface for keyed plan-generation status records.
// Entries are created pending when a background generation starts and
// overwritten exactly once on completion or failure. Implementations
// must bound retention: the given TTL is the longest an entry may
// outlive its last write.
type Store interface {
	Set(ctx context.Context, id string, status plan.Status, ttl time.Duration) error
	// Get returns domain.ErrNotFound (wrapped or bare) for unknown ids.
	Get(ctx context.Context, id string) (*plan.Status, error)
	Delete(ctx context.Context, id string) error
}
