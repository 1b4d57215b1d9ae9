package support

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassificationPrompt(t *testing.T) {
	prompt, err := ClassificationPrompt(`printer says "offline"`)
	require.NoError(t, err)

	for _, l := range IssueLabels {
		assert.Contains(t, prompt, l)
	}
	for _, c := range Categories {
		assert.Contains(t, prompt, "category: "+c.Name)
	}
	assert.Contains(t, prompt, `Customer Issue: "printer says \"offline\""`)
	assert.Contains(t, prompt, `"issueLabel"`)
	assert.Contains(t, prompt, "[EXAMPLES]")
}

func TestSynthesisPrompt(t *testing.T) {
	c := Classification{IssueLabel: "Cannot connect to Wi-Fi", Category: "Network"}

	prompt, err := SynthesisPrompt("no wifi", c, []string{"Restart the router.", "Forget the network."})
	require.NoError(t, err)
	assert.Contains(t, prompt, "PROVIDED_SOLUTIONS:\n[\n  \"Restart the router.\",\n  \"Forget the network.\"\n]")
	assert.Contains(t, prompt, `Closest Issue: "Cannot connect to Wi-Fi"`)
	assert.Contains(t, prompt, `"usedFallback"`)

	prompt, err = SynthesisPrompt("no wifi", c, nil)
	require.NoError(t, err)
	assert.Contains(t, prompt, "PROVIDED_SOLUTIONS:\n"+NoCandidates)
}

func TestIsKnowledgeCategory(t *testing.T) {
	for _, name := range []string{"Software", "Account", "Network", "Performance", "Hardware"} {
		assert.True(t, isKnowledgeCategory(name), name)
	}
	for _, name := range []string{"Security", "Data/Files", "network", ""} {
		assert.False(t, isKnowledgeCategory(name), name)
	}
}
