// Package planstoretest provides the conformance suite for the
// planstore port plus a map-backed double, so every implementation is
// held to the same contract the planner pipeline relies on.
package planstoretest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Strob0t/PlanForge/internal/domain"
	"github.com/Strob0t/PlanForge/internal/domain/plan"
	"github.com/Strob0t/PlanForge/internal/port/planstore"
)

// Factory builds a fresh, empty store for one subtest. Cleanup goes
// through t.Cleanup.
type Factory func(t *testing.T) planstore.Store

// TestStore runs the port contract against an implementation:
// read-after-write visibility, ErrNotFound for unknown ids, overwrite
// on state transition, delete, and TTL expiry.
func TestStore(t *testing.T, factory Factory) {
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		s := factory(t)
		st := plan.Status{Status: plan.StatePending, CreatedAt: time.Now()}
		if err := s.Set(ctx, "plan-1", st, time.Minute); err != nil {
			t.Fatal(err)
		}

		got, err := s.Get(ctx, "plan-1")
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != plan.StatePending {
			t.Errorf("expected pending, got %s", got.Status)
		}
	})

	t.Run("UnknownID", func(t *testing.T) {
		s := factory(t)
		if _, err := s.Get(ctx, "never-created"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("OverwriteOnTransition", func(t *testing.T) {
		s := factory(t)
		if err := s.Set(ctx, "plan-2", plan.Status{Status: plan.StatePending}, time.Minute); err != nil {
			t.Fatal(err)
		}

		done := plan.Status{
			Status: plan.StateCompleted,
			Plan:   &plan.Plan{Tasks: []plan.Task{{ID: "task-0", Title: "t"}}},
		}
		if err := s.Set(ctx, "plan-2", done, time.Minute); err != nil {
			t.Fatal(err)
		}

		got, err := s.Get(ctx, "plan-2")
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != plan.StateCompleted {
			t.Errorf("expected completed after overwrite, got %s", got.Status)
		}
		if got.Plan == nil || len(got.Plan.Tasks) != 1 {
			t.Errorf("expected plan carried with completed status, got %+v", got.Plan)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s := factory(t)
		if err := s.Set(ctx, "plan-3", plan.Status{Status: plan.StatePending}, time.Minute); err != nil {
			t.Fatal(err)
		}
		if err := s.Delete(ctx, "plan-3"); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Get(ctx, "plan-3"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("TTLExpiry", func(t *testing.T) {
		s := factory(t)
		if err := s.Set(ctx, "plan-4", plan.Status{Status: plan.StatePending}, 20*time.Millisecond); err != nil {
			t.Fatal(err)
		}
		time.Sleep(60 * time.Millisecond)

		if _, err := s.Get(ctx, "plan-4"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected entry to expire, got %v", err)
		}
	})
}
