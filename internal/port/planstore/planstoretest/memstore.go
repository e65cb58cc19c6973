package planstoretest

import (
	"context"
	"sync"
	"time"

	"github.com/Strob0t/PlanForge/internal/domain"
	"github.com/Strob0t/PlanForge/internal/domain/plan"
	"github.com/Strob0t/PlanForge/internal/port/planstore"
)

// MemStore is a map-backed Store for tests that want plan statuses
// without a cache behind them. Expiry is checked lazily on Get.
type MemStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

type memEntry struct {
	status    plan.Status
	expiresAt time.Time
}

var _ planstore.Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[string]memEntry)}
}

func (m *MemStore) Set(_ context.Context, id string, status plan.Status, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memEntry{status: status}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	m.entries[id] = e
	return nil
}

func (m *MemStore) Get(_ context.Context, id string) (*plan.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(m.entries, id)
		return nil, domain.ErrNotFound
	}
	st := e.status
	return &st, nil
}

func (m *MemStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, id)
	return nil
}
