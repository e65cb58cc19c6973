// Package modeltest provides a scripted model.Client double for tests
// of the planner pipeline and its transports.
package modeltest

import (
	"context"
	"sync"

	"github.com/Strob0t/PlanForge/internal/port/model"
)

// Fake is a scripted model.Client that counts upstream calls. Buffered
// calls return Output and GenErr; streaming calls replay Fragments in
// order and then StreamErr, if set.
type Fake struct {
	mu    sync.Mutex
	calls int

	Output    string
	GenErr    error
	Fragments []string
	StreamErr error
}

var _ model.Client = (*Fake)(nil)

// Calls reports how many times the upstream was reached.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *Fake) Generate(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.Output, f.GenErr
}

func (f *Fake) Stream(_ context.Context, _ string) (<-chan string, <-chan error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	contentChan := make(chan string, len(f.Fragments))
	errChan := make(chan error, 1)
	for _, frag := range f.Fragments {
		contentChan <- frag
	}
	if f.StreamErr != nil {
		errChan <- f.StreamErr
	}
	close(contentChan)
	close(errChan)
	return contentChan, errChan
}
