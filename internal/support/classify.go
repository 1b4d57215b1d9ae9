package support

import (
	"context"
	"time"

	"supportdesk/internal/llm"
	"supportdesk/internal/metrics"
)

// Classifier maps a free-text issue onto a known issue label and category.
type Classifier struct {
	gen    Generator
	policy CallPolicy
}

func NewClassifier(gen Generator, policy CallPolicy) *Classifier {
	return &Classifier{gen: gen, policy: policy}
}

// Classify runs stage 1. Failures are the most specific kind available:
// GenerationUnavailable, ServiceTimeout, NoStructuredPayload,
// MalformedPayload or SchemaViolation.
func (c *Classifier) Classify(ctx context.Context, issue string) (Classification, error) {
	start := time.Now()
	defer func() { metrics.StageDuration.WithLabelValues("classify").Observe(time.Since(start).Seconds()) }()

	prompt, err := ClassificationPrompt(issue)
	if err != nil {
		return Classification{}, err
	}
	ctx = llm.WithStage(ctx, "classify")
	return complete(ctx, c.policy, c.gen, prompt, ValidateClassification)
}
