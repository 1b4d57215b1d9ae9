package support

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPayload(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"prose around", `Sure! Here it is: {"a":1} Hope that helps.`, `{"a":1}`},
		{"markdown fence", "```json\n{\"a\": {\"b\": 2}}\n```", `{"a": {"b": 2}}`},
		{"first open to last close", `x {"a":1} y {"b":2} z`, `{"a":1} y {"b":2}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractPayload(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractPayload_NoRegion(t *testing.T) {
	for _, raw := range []string{"", "no json here", "only { open", "only } close", "} reversed {"} {
		_, err := ExtractPayload(raw)
		require.ErrorIs(t, err, ErrNoStructuredPayload, raw)
	}
}

func TestValidateClassification(t *testing.T) {
	c, err := ValidateClassification(`{"issueLabel":"Cannot connect to Wi-Fi","category":"Network"}`)
	require.NoError(t, err)
	assert.Equal(t, Classification{IssueLabel: "Cannot connect to Wi-Fi", Category: "Network"}, c)

	// Unknown members are tolerated; values round-trip unchanged.
	c, err = ValidateClassification(`{"issueLabel":" Forgot password","category":"Security","confidence":0.4}`)
	require.NoError(t, err)
	assert.Equal(t, " Forgot password", c.IssueLabel)
	assert.Equal(t, "Security", c.Category)
}

func TestValidateClassification_Failures(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		kind    *Error
		fields  []string
	}{
		{"not json", `{issueLabel: Network}`, ErrMalformedPayload, nil},
		{"truncated", `{"issueLabel":"x"`, ErrMalformedPayload, nil},
		{"missing label", `{"category":"Network"}`, ErrSchemaViolation, []string{"issueLabel"}},
		{"missing both", `{}`, ErrSchemaViolation, []string{"issueLabel", "category"}},
		{"wrong type", `{"issueLabel":7,"category":"Network"}`, ErrSchemaViolation, []string{"issueLabel"}},
		{"empty category", `{"issueLabel":"x","category":"  "}`, ErrSchemaViolation, []string{"category"}},
		{"legacy field name", `{"closestissue":"x","category":"Network"}`, ErrSchemaViolation, []string{"issueLabel"}},
		{"null label", `{"issueLabel":null,"category":"Network"}`, ErrSchemaViolation, []string{"issueLabel"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateClassification(tc.payload)
			require.ErrorIs(t, err, tc.kind)
			for _, f := range tc.fields {
				assert.Contains(t, err.Error(), f)
			}
		})
	}
}

func TestValidateSolution(t *testing.T) {
	s, err := ValidateSolution(`{"category":"Network","usedFallback":false,"steps":["Restart the router","Reconnect"]}`)
	require.NoError(t, err)
	assert.Equal(t, Solution{Category: "Network", UsedFallback: false, Steps: []string{"Restart the router", "Reconnect"}}, s)

	// Lenient by default: one step is accepted even though guidance says 2-6.
	s, err = ValidateSolution(`{"category":"Network","usedFallback":false,"steps":["Only step"]}`)
	require.NoError(t, err)
	assert.Len(t, s.Steps, 1)
}

func TestValidateSolution_Failures(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		kind    *Error
		field   string
	}{
		{"malformed", `{"category":"Network",}`, ErrMalformedPayload, ""},
		{"empty steps", `{"category":"Network","usedFallback":false,"steps":[]}`, ErrSchemaViolation, "steps"},
		{"null steps", `{"category":"Network","usedFallback":false,"steps":null}`, ErrSchemaViolation, "steps"},
		{"steps not strings", `{"category":"Network","usedFallback":false,"steps":[1,2]}`, ErrSchemaViolation, "steps"},
		{"fallback as string", `{"category":"Network","usedFallback":"no","steps":["a","b"]}`, ErrSchemaViolation, "usedFallback"},
		{"missing category", `{"usedFallback":true,"steps":["a","b","c"]}`, ErrSchemaViolation, "category"},
		{"snake case fields", `{"category":"Network","used_fallback":false,"solution_steps":["a","b"]}`, ErrSchemaViolation, "usedFallback"},
		{"null fallback", `{"category":"Network","usedFallback":null,"steps":["a","b"]}`, ErrSchemaViolation, "usedFallback"},
		{"null category", `{"category":null,"usedFallback":false,"steps":["a","b"]}`, ErrSchemaViolation, "category"},
		{"null step", `{"category":"Network","usedFallback":false,"steps":["a",null]}`, ErrSchemaViolation, "steps"},
		{"blank step", `{"category":"Network","usedFallback":false,"steps":["a","  "]}`, ErrSchemaViolation, "steps[1]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateSolution(tc.payload)
			require.ErrorIs(t, err, tc.kind)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestSolutionValidator_Strict(t *testing.T) {
	v := SolutionValidator{Strict: true}

	_, err := v.Validate(`{"category":"Network","usedFallback":false,"steps":["a","b"]}`)
	require.NoError(t, err)

	_, err = v.Validate(`{"category":"Network","usedFallback":false,"steps":["a"]}`)
	require.ErrorIs(t, err, ErrSchemaViolation)

	_, err = v.Validate(`{"category":"Security","usedFallback":true,"steps":["a","b"]}`)
	require.ErrorIs(t, err, ErrSchemaViolation, "fallback needs at least three steps")

	_, err = v.Validate(`{"category":"Security","usedFallback":true,"steps":["1","2","3","4","5","6","7"]}`)
	require.ErrorIs(t, err, ErrSchemaViolation)
}

func TestErrorChain(t *testing.T) {
	inner := &Error{Kind: KindNoStructuredPayload, Detail: "no {...} region in completion"}
	outer := &Error{Kind: KindClassificationFailed, Err: inner}

	assert.ErrorIs(t, outer, ErrClassificationFailed)
	assert.ErrorIs(t, outer, ErrNoStructuredPayload)
	assert.NotErrorIs(t, outer, ErrSynthesisFailed)
	assert.Equal(t, KindClassificationFailed, KindOf(outer))
	assert.Equal(t, KindNoStructuredPayload, Cause(outer).Kind)
	assert.Equal(t, "classification_failed: no_structured_payload: no {...} region in completion", outer.Error())
	assert.Equal(t, KindUnexpected, KindOf(errors.New("plain")))
	assert.Nil(t, Cause(errors.New("plain")))
}
