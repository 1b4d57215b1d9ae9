package support

import (
	"context"
	"time"
)

// Generator is the text-generation capability: one prompt in, one completion out.
// Implementations must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// KnowledgeBase returns the distinct remediation texts for an exact
// (category, issueLabel) match. It must be safe for concurrent readers.
type KnowledgeBase interface {
	Lookup(category, issueLabel string) []string
}

// CallPolicy bounds a single stage's use of the generator.
type CallPolicy struct {
	// Timeout caps each generation call. Zero means no extra bound beyond ctx.
	Timeout time.Duration
	// FormatRetries re-prompts this many extra times when the completion has
	// no payload or an undecodable one. Zero keeps single-attempt behavior.
	FormatRetries int
}

func (p CallPolicy) generate(ctx context.Context, gen Generator, prompt string) (string, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	raw, err := gen.Generate(ctx, prompt)
	if err != nil {
		return "", generationError(err)
	}
	return raw, nil
}

// complete runs prompt through the generator, the extractor and validate,
// returning the first failure. Formatting failures are retried per policy.
func complete[T any](ctx context.Context, p CallPolicy, gen Generator, prompt string, validate func(string) (T, error)) (T, error) {
	var zero T
	var last error
	for attempt := 0; attempt <= p.FormatRetries; attempt++ {
		raw, err := p.generate(ctx, gen, prompt)
		if err != nil {
			return zero, err
		}
		payload, err := ExtractPayload(raw)
		if err == nil {
			v, verr := validate(payload)
			if verr == nil {
				return v, nil
			}
			err = verr
		}
		last = err
		if !formatFailure(err) {
			return zero, err
		}
	}
	return zero, last
}

func formatFailure(err error) bool {
	switch KindOf(err) {
	case KindNoStructuredPayload, KindMalformedPayload:
		return true
	}
	return false
}
