package llm

import (
	"context"
	"fmt"

	"github.com/Veraticus/origin/internal/model"
)

// Client defines the interface for completion backends.
type Client interface {
	// Complete issues a single non-streaming call and returns the full text.
	Complete(ctx context.Context, modelID model.ModelID, messages []model.Message) (string, error)
	// Stream issues a streaming call. The returned Stream must be closed.
	Stream(ctx context.Context, modelID model.ModelID, messages []model.Message) (Stream, error)
}

// Stream is a finite, non-restartable sequence of text fragments.
// Recv returns io.EOF once the backend has finished.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// ProviderError reports a transport or backend failure for one model call.
type ProviderError struct {
	Err   error
	Model model.ModelID
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func providerError(modelID model.ModelID, err error) error {
	return &ProviderError{Model: modelID, Err: err}
}
