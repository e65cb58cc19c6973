// Package model defines the port interfaces for the upstream generative
// language model.
package model

import "context"

// Generator produces one fully-buffered completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Streamer produces an incremental completion. Fragments arrive ordered
// and gap-free on the content channel; at most one error is sent on the
// error channel. Both channels are closed when the stream ends. The
// implementation must stop promptly when ctx is cancelled.
type Streamer interface {
	Stream(ctx context.Context, prompt string) (<-chan string, <-chan error)
}

// Client is the full upstream surface the planner pipeline needs.
type Client interface {
	Generator
	Streamer
}
