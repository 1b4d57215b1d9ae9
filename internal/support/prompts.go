package support

import (
	"encoding/json"

	"supportdesk/internal/llmtool"
)

// IssueLabels is the closed set of known issues the classifier picks from.
var IssueLabels = []string{
	"Cannot connect to Wi-Fi",
	"Software installation failure",
	"Forgot password",
	"Unable to access email",
	"Blue screen error",
	"Printer not responding",
	"Slow system performance",
}

// Categories is the closed set of issue categories, with their meaning.
var Categories = []llmtool.VocabularyItem{
	{Name: "Software", Description: "Problems with installing, updating, or using apps/programs."},
	{Name: "Account", Description: "Login, password, or account access problems."},
	{Name: "Network", Description: "Internet or Wi-Fi connectivity issues."},
	{Name: "Performance", Description: "Slow speed, freezing, crashing, or blue screen errors."},
	{Name: "Hardware", Description: "Issues with physical devices or components."},
	{Name: "Security", Description: "Virus alerts, suspicious pop-ups, or password breaches."},
	{Name: "Data/Files", Description: "Missing files, file recovery, or problems opening documents."},
}

// KnowledgeCategories carry remediation data in the knowledge base.
var KnowledgeCategories = map[string]bool{
	"Software":    true,
	"Account":     true,
	"Network":     true,
	"Performance": true,
	"Hardware":    true,
}

var classificationExamples = []llmtool.PromptExample{
	{Input: `"My laptop freezes and shows a blue error screen after 10 minutes"`, Output: `{"issueLabel":"Blue screen error","category":"Performance"}`},
	{Input: `"Cannot connect to the office internet"`, Output: `{"issueLabel":"Cannot connect to Wi-Fi","category":"Network"}`},
	{Input: `"I forgot my email password and can't log in"`, Output: `{"issueLabel":"Forgot password","category":"Account"}`},
	{Input: `"The antivirus installation fails with an error"`, Output: `{"issueLabel":"Software installation failure","category":"Software"}`},
	{Input: `"The printer won't print anything"`, Output: `{"issueLabel":"Printer not responding","category":"Hardware"}`},
	{Input: `"My PC is very slow when opening programs"`, Output: `{"issueLabel":"Slow system performance","category":"Performance"}`},
	{Input: `"My email app crashes every time I open it"`, Output: `{"issueLabel":"Unable to access email","category":"Account"}`},
}

// ClassificationPrompt builds the stage-1 prompt for issue.
func ClassificationPrompt(issue string) (string, error) {
	labels := make([]llmtool.VocabularyItem, 0, len(IssueLabels)+len(Categories))
	for _, l := range IssueLabels {
		labels = append(labels, llmtool.VocabularyItem{Name: "issue: " + l})
	}
	for _, c := range Categories {
		labels = append(labels, llmtool.VocabularyItem{Name: "category: " + c.Name, Description: c.Description})
	}
	return llmtool.StructuredPromptSpec{
		Purpose:    "You are a technical support assistant. Pick the known issue closest in meaning to the customer's issue, then assign its category.",
		Vocabulary: labels,
		Rules: []string{
			`Do not choose "Slow system performance" unless the issue is clearly about speed, freezing, lag, or slowness without a specific error code.`,
			`If a specific error is mentioned (e.g. "blue screen"), choose that exact issue.`,
			"If a device is not working physically, choose a Hardware issue.",
			"If the problem is about network connectivity, choose Network.",
			"If it is about installing or running software and not about performance, choose Software.",
			"If it is about login or account recovery, choose Account.",
		},
		Examples:    classificationExamples,
		Input:       []llmtool.InputField{{Label: "Customer Issue", Value: issue}},
		Schema:      Classification{},
		Constraints: []string{"Respond ONLY with one JSON object matching OUTPUT_SCHEMA.", "Use labels exactly as written in VOCABULARY."},
	}.Render()
}

// NoCandidates is what the synthesis prompt shows when the knowledge base has
// nothing for the classification.
const NoCandidates = "none available"

// SynthesisPrompt builds the stage-2 prompt. An empty candidates slice is
// rendered as NoCandidates.
func SynthesisPrompt(issue string, c Classification, candidates []string) (string, error) {
	solutions := NoCandidates
	if len(candidates) > 0 {
		b, err := json.MarshalIndent(candidates, "", "  ")
		if err != nil {
			return "", err
		}
		solutions = string(b)
	}
	return llmtool.StructuredPromptSpec{
		Purpose:    "You are a technical support assistant. Turn the provided known solutions into a short step-by-step plan for the customer.",
		Background: "PROVIDED_SOLUTIONS:\n" + solutions,
		Rules: []string{
			"From PROVIDED_SOLUTIONS pick the single most relevant solution and produce a logical plan of 2-6 steps using only that solution.",
			"Do NOT invent or add extra solutions if at least one provided solution applies.",
			"Only if none of the provided solutions apply, or none are available, generate a concise fallback guide of 3-6 steps.",
			`Set "usedFallback" to true when you generated a fallback guide, otherwise false.`,
		},
		Input: []llmtool.InputField{
			{Label: "Customer Issue", Value: issue},
			{Label: "Closest Issue", Value: c.IssueLabel},
			{Label: "Category", Value: c.Category},
		},
		Schema: Solution{},
		Constraints: []string{
			"Respond ONLY with one JSON object matching OUTPUT_SCHEMA, no extra text.",
			`Echo "category" exactly as given in INPUT.`,
			"Each step is one short instruction without numbering.",
		},
	}.Render()
}

func isKnowledgeCategory(category string) bool {
	return KnowledgeCategories[category]
}
