package model

import (
	"context"

	"github.com/queryms/msconsole/internal/model/contract"
)

// StreamProvider creates streaming chat completions. One stream per loop
// iteration; tool choice is always automatic.
type StreamProvider interface {
	Name() string
	CreateStream(ctx context.Context, req contract.CompletionRequest) (Stream, error)
	Health(ctx context.Context) error
}

// Stream delivers completion deltas until the provider terminates it.
// Recv returns io.EOF after the final delta. Close releases the underlying
// connection and is safe to call more than once.
type Stream interface {
	Recv() (contract.StreamDelta, error)
	Close() error
}
