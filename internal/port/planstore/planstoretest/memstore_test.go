package planstoretest_test

import (
	"testing"

	"github.com/Strob0t/PlanForge/internal/port/planstore"
	"github.com/Strob0t/PlanForge/internal/port/planstore/planstoretest"
)

func TestMemStoreContract(t *testing.T) {
	planstoretest.TestStore(t, func(t *testing.T) planstore.Store {
		return planstoretest.NewMemStore()
	})
}
