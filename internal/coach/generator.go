// Package coach builds coaching prompts from a user's profile and meal
// history and relays replies from a text generation service.
package coach

import "context"

// Generator is the text generation capability the coach depends on.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateStream(ctx context.Context, prompt string) (Stream, error)
}

// Stream yields reply chunks in order. Recv returns io.EOF after the last
// chunk. A stream is single-use: once drained or closed it cannot restart.
type Stream interface {
	Recv() (string, error)
	Close() error
}
