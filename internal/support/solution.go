package support

import (
	"strings"

	"supportdesk/internal/util/jsonutil"
)

// Solution is the stage-2 result.
type Solution struct {
	Category     string   `json:"category" jsonschema:"required,description=Category echoed from the classification"`
	UsedFallback bool     `json:"usedFallback" jsonschema:"required,description=True only when no provided solution applied"`
	Steps        []string `json:"steps" jsonschema:"required,minItems=1,maxItems=6,description=Short ordered instructions"`
}

// Step-count guidance given to the generation service.
const (
	MinSteps         = 2
	MinFallbackSteps = 3
	MaxSteps         = 6
)

// SolutionValidator checks stage-2 payloads. With Strict set, step counts
// outside the prompt guidance are rejected as schema violations; otherwise
// only an empty step list is.
type SolutionValidator struct {
	Strict bool
}

// ValidateSolution validates payload with the lenient validator.
func ValidateSolution(payload string) (Solution, error) {
	return SolutionValidator{}.Validate(payload)
}

func (v SolutionValidator) Validate(payload string) (Solution, error) {
	obj, err := jsonutil.DecodeObject([]byte(payload))
	if err != nil {
		return Solution{}, &Error{Kind: KindMalformedPayload, Detail: "solution payload", Err: err}
	}

	var bad []string
	category, ok := jsonutil.String(obj, "category")
	if !ok {
		bad = append(bad, "category")
	}
	fallback, ok := jsonutil.Bool(obj, "usedFallback")
	if !ok {
		bad = append(bad, "usedFallback")
	}
	steps, ok := jsonutil.Strings(obj, "steps")
	if !ok {
		bad = append(bad, "steps")
	}
	if len(bad) > 0 {
		return Solution{}, newError(KindSchemaViolation, nil, "missing or invalid field(s): %s", strings.Join(bad, ", "))
	}
	if len(steps) == 0 {
		return Solution{}, &Error{Kind: KindSchemaViolation, Detail: "steps must not be empty"}
	}
	for i, step := range steps {
		if strings.TrimSpace(step) == "" {
			return Solution{}, newError(KindSchemaViolation, nil, "steps[%d] is blank", i)
		}
	}
	if v.Strict {
		lo := MinSteps
		if fallback {
			lo = MinFallbackSteps
		}
		if len(steps) < lo || len(steps) > MaxSteps {
			return Solution{}, newError(KindSchemaViolation, nil, "steps: got %d, want %d-%d (usedFallback=%t)", len(steps), lo, MaxSteps, fallback)
		}
	}
	return Solution{Category: category, UsedFallback: fallback, Steps: steps}, nil
}
