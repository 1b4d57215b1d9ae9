package llmclient

import (
	"context"
	"errors"
)

// LLMClient is a text-generation provider: one prompt in, one completion out.
// Implementations are safe for concurrent use and keep no session state.
type LLMClient interface {
	Name() string
	Close() error
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyCompletion is returned when the provider answers without any text.
var ErrEmptyCompletion = errors.New("llm: empty completion")

// PermanentError indicates an error that will not resolve with retries
// (bad credentials, unknown model, rejected request).
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err is marked as permanent.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}
