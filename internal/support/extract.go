package support

import "strings"

// ExtractPayload returns the region from the first '{' to the last '}' of raw,
// inclusive. Prose, markdown fences and commentary around it are dropped; the
// region itself is not validated.
func ExtractPayload(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return "", &Error{Kind: KindNoStructuredPayload, Detail: "no {...} region in completion"}
	}
	return raw[start : end+1], nil
}
