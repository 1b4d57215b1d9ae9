package support

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindEmptyInput            Kind = "empty_input"
	KindGenerationUnavailable Kind = "generation_unavailable"
	KindServiceTimeout        Kind = "service_timeout"
	KindNoStructuredPayload   Kind = "no_structured_payload"
	KindMalformedPayload      Kind = "malformed_payload"
	KindSchemaViolation       Kind = "schema_violation"
	KindClassificationFailed  Kind = "classification_failed"
	KindSynthesisFailed       Kind = "synthesis_failed"
	KindUnexpected            Kind = "unexpected"
)

// Sentinels for errors.Is. Matching compares Kind only.
var (
	ErrEmptyInput            = &Error{Kind: KindEmptyInput}
	ErrGenerationUnavailable = &Error{Kind: KindGenerationUnavailable}
	ErrServiceTimeout        = &Error{Kind: KindServiceTimeout}
	ErrNoStructuredPayload   = &Error{Kind: KindNoStructuredPayload}
	ErrMalformedPayload      = &Error{Kind: KindMalformedPayload}
	ErrSchemaViolation       = &Error{Kind: KindSchemaViolation}
	ErrClassificationFailed  = &Error{Kind: KindClassificationFailed}
	ErrSynthesisFailed       = &Error{Kind: KindSynthesisFailed}
	ErrUnexpected            = &Error{Kind: KindUnexpected}
)

// Error is the typed failure returned by every component of the pipeline.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the outermost Kind in err's chain, or KindUnexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// Cause returns the innermost *Error in err's chain, i.e. the most specific kind.
func Cause(err error) *Error {
	var last *Error
	for err != nil {
		if e, ok := err.(*Error); ok {
			last = e
		}
		err = errors.Unwrap(err)
	}
	return last
}

// generationError maps a collaborator error onto the generation kinds.
func generationError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindServiceTimeout, Detail: "generation service did not answer in time", Err: err}
	}
	return &Error{Kind: KindGenerationUnavailable, Err: err}
}
