package support

import (
	"context"
	"time"

	"supportdesk/internal/llm"
	"supportdesk/internal/metrics"
)

// Synthesizer turns a classification into a remediation plan, grounded in the
// knowledge base whenever it has entries for the classification.
type Synthesizer struct {
	kb        KnowledgeBase
	gen       Generator
	policy    CallPolicy
	validator SolutionValidator
}

func NewSynthesizer(kb KnowledgeBase, gen Generator, policy CallPolicy, validator SolutionValidator) *Synthesizer {
	return &Synthesizer{kb: kb, gen: gen, policy: policy, validator: validator}
}

// Candidates returns the knowledge-base remediations offered to the model.
// Categories without remediation data never reach the knowledge base.
func (s *Synthesizer) Candidates(c Classification) []string {
	if !isKnowledgeCategory(c.Category) || s.kb == nil {
		metrics.KnowledgeLookupsTotal.WithLabelValues("skipped").Inc()
		return nil
	}
	found := s.kb.Lookup(c.Category, c.IssueLabel)
	if len(found) == 0 {
		metrics.KnowledgeLookupsTotal.WithLabelValues("miss").Inc()
	} else {
		metrics.KnowledgeLookupsTotal.WithLabelValues("hit").Inc()
	}
	return found
}

// Synthesize runs stage 2 for classification c of issue.
func (s *Synthesizer) Synthesize(ctx context.Context, c Classification, issue string) (Solution, error) {
	start := time.Now()
	defer func() { metrics.StageDuration.WithLabelValues("synthesize").Observe(time.Since(start).Seconds()) }()

	prompt, err := SynthesisPrompt(issue, c, s.Candidates(c))
	if err != nil {
		return Solution{}, err
	}
	ctx = llm.WithStage(ctx, "synthesize")
	return complete(ctx, s.policy, s.gen, prompt, s.validator.Validate)
}
