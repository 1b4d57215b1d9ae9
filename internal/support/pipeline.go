package support

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"supportdesk/internal/logging"
	"supportdesk/internal/metrics"
)

// Answer is a successful pipeline result ready for delivery.
type Answer struct {
	Classification Classification
	Solution       Solution
	// Category is the display form of the solution category.
	Category string
	// Text is the category header followed by the numbered steps.
	Text string
}

// Options tune the pipeline. The zero value gives the baseline contract:
// one attempt per stage, no call timeout and lenient step counts.
type Options struct {
	Policy      CallPolicy
	StrictSteps bool
	Logger      *zap.Logger
}

// Pipeline sequences classification and synthesis for one issue at a time.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	classifier  *Classifier
	synthesizer *Synthesizer
	log         *zap.Logger
}

func NewPipeline(gen Generator, kb KnowledgeBase, opts Options) *Pipeline {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		classifier:  NewClassifier(gen, opts.Policy),
		synthesizer: NewSynthesizer(kb, gen, opts.Policy, SolutionValidator{Strict: opts.StrictSteps}),
		log:         log,
	}
}

// Run classifies issue and synthesizes its solution. The returned error is
// always a *Error; a collaborator panic is reported as KindUnexpected.
func (p *Pipeline) Run(ctx context.Context, issue string) (ans Answer, err error) {
	log := logging.With(ctx, p.log)
	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline panic", zap.Any("panic", r), zap.Stack("stack"))
			ans, err = Answer{}, &Error{Kind: KindUnexpected, Detail: fmt.Sprint(r)}
		}
		p.record(log, err)
	}()

	if strings.TrimSpace(issue) == "" {
		return Answer{}, &Error{Kind: KindEmptyInput, Detail: "no query provided"}
	}

	c, err := p.classifier.Classify(ctx, issue)
	if err != nil {
		return Answer{}, wrapStage(KindClassificationFailed, err)
	}
	log.Info("issue classified", zap.String("issue_label", c.IssueLabel), zap.String("category", c.Category))

	sol, err := p.synthesizer.Synthesize(ctx, c, issue)
	if err != nil {
		return Answer{}, wrapStage(KindSynthesisFailed, err)
	}
	log.Info("solution synthesized", zap.Bool("used_fallback", sol.UsedFallback), zap.Int("steps", len(sol.Steps)))
	metrics.FallbackTotal.WithLabelValues(strconv.FormatBool(sol.UsedFallback)).Inc()

	category := sol.Category
	if strings.TrimSpace(category) == "" {
		category = c.Category
	}
	title := TitleCase(category)
	return Answer{
		Classification: c,
		Solution:       sol,
		Category:       title,
		Text:           Format(title, sol.Steps),
	}, nil
}

func (p *Pipeline) record(log *zap.Logger, err error) {
	if err == nil {
		metrics.PipelineRunsTotal.WithLabelValues("ok").Inc()
		return
	}
	kind := string(KindOf(err))
	if cause := Cause(err); cause != nil {
		kind = string(cause.Kind)
	}
	metrics.PipelineRunsTotal.WithLabelValues(kind).Inc()
	log.Warn("pipeline failed", zap.String("kind", string(KindOf(err))), zap.Error(err))
}

func wrapStage(kind Kind, err error) error {
	if _, ok := err.(*Error); !ok {
		return &Error{Kind: KindUnexpected, Err: err}
	}
	return &Error{Kind: kind, Err: err}
}

// TitleCase renders a category for display, e.g. "data/files" -> "Data/Files".
func TitleCase(category string) string {
	// Casers carry state; build one per call.
	return cases.Title(language.English).String(strings.TrimSpace(category))
}

// Format renders the category header and steps as a numbered list, one per line.
func Format(category string, steps []string) string {
	var b strings.Builder
	b.WriteString("Category: ")
	b.WriteString(category)
	for i, s := range steps {
		fmt.Fprintf(&b, "\n%d. %s", i+1, strings.TrimSpace(s))
	}
	return b.String()
}
