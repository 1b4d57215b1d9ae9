package support

import (
	"strings"

	"supportdesk/internal/util/jsonutil"
)

// Classification is the stage-1 result: the closest known issue and its category.
type Classification struct {
	IssueLabel string `json:"issueLabel" jsonschema:"required,description=Exact label from the known issue list"`
	Category   string `json:"category" jsonschema:"required,description=Category name from the category list"`
}

// ValidateClassification decodes payload and checks both fields are non-empty
// strings. The pairing of label and category is not cross-checked.
func ValidateClassification(payload string) (Classification, error) {
	obj, err := jsonutil.DecodeObject([]byte(payload))
	if err != nil {
		return Classification{}, &Error{Kind: KindMalformedPayload, Detail: "classification payload", Err: err}
	}

	var bad []string
	label, ok := jsonutil.String(obj, "issueLabel")
	if !ok || strings.TrimSpace(label) == "" {
		bad = append(bad, "issueLabel")
	}
	category, ok := jsonutil.String(obj, "category")
	if !ok || strings.TrimSpace(category) == "" {
		bad = append(bad, "category")
	}
	if len(bad) > 0 {
		return Classification{}, newError(KindSchemaViolation, nil, "missing or invalid field(s): %s", strings.Join(bad, ", "))
	}
	return Classification{IssueLabel: label, Category: category}, nil
}
