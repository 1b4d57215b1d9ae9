package llmtool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// PromptExample captures a worked example shown to the model.
type PromptExample struct {
	Input  string
	Output string
}

// StructuredPromptSpec defines the sections of a structured prompt. Empty
// sections are omitted from the rendered text.
type StructuredPromptSpec struct {
	Purpose     string
	Background  string
	Vocabulary  []VocabularyItem
	Rules       []string
	Examples    []PromptExample
	Input       []InputField
	Schema      any
	Constraints []string
}

// VocabularyItem is a fixed choice the model must pick from.
type VocabularyItem struct {
	Name        string
	Description string
}

// InputField is a labelled value rendered in the INPUT section.
type InputField struct {
	Label string
	Value string
}

// Render produces the prompt text. Schema, when set, is reflected into a JSON
// Schema document and placed in the OUTPUT_SCHEMA section.
func (spec StructuredPromptSpec) Render() (string, error) {
	if strings.TrimSpace(spec.Purpose) == "" {
		return "", fmt.Errorf("llmtool: purpose is empty")
	}
	var schemaText string
	if spec.Schema != nil {
		s, err := SchemaJSON(spec.Schema)
		if err != nil {
			return "", fmt.Errorf("llmtool: reflect schema: %w", err)
		}
		schemaText = s
	}

	var buf bytes.Buffer
	writeSection(&buf, "PURPOSE", spec.Purpose)
	writeSection(&buf, "BACKGROUND", spec.Background)
	writeSection(&buf, "VOCABULARY", formatVocabulary(spec.Vocabulary))
	writeSection(&buf, "RULES", formatList(spec.Rules))
	if len(spec.Examples) > 0 {
		writeSection(&buf, "EXAMPLES", formatExamples(spec.Examples))
	}
	writeSection(&buf, "INPUT", formatInput(spec.Input))
	writeSection(&buf, "OUTPUT_SCHEMA", schemaText)
	writeSection(&buf, "CONSTRAINTS", formatList(spec.Constraints))
	return strings.TrimSpace(buf.String()) + "\n", nil
}

// SchemaJSON reflects v into an inline JSON Schema without $refs.
func SchemaJSON(v any) (string, error) {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Anonymous:                 true,
	}
	s := r.Reflect(v)
	s.Version = ""
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func formatVocabulary(items []VocabularyItem) string {
	var buf strings.Builder
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		if it.Description != "" {
			fmt.Fprintf(&buf, "- %s: %s\n", name, it.Description)
		} else {
			fmt.Fprintf(&buf, "- %s\n", name)
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatList(items []string) string {
	var buf strings.Builder
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		fmt.Fprintf(&buf, "- %s\n", item)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatInput(fields []InputField) string {
	var buf strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&buf, "%s: %q\n", f.Label, f.Value)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatExamples(examples []PromptExample) string {
	var buf strings.Builder
	for i, ex := range examples {
		fmt.Fprintf(&buf, "Example %d:\n", i+1)
		if strings.TrimSpace(ex.Input) != "" {
			buf.WriteString("INPUT: ")
			buf.WriteString(strings.TrimSpace(ex.Input))
			buf.WriteString("\n")
		}
		if strings.TrimSpace(ex.Output) != "" {
			buf.WriteString("OUTPUT: ")
			buf.WriteString(strings.TrimSpace(ex.Output))
			buf.WriteString("\n")
		}
		buf.WriteString("\n")
	}
	return strings.TrimRight(buf.String(), "\n")
}

func writeSection(buf *bytes.Buffer, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	buf.WriteString("[")
	buf.WriteString(title)
	buf.WriteString("]\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString("\n")
}
