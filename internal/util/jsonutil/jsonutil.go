package jsonutil

import (
	"bytes"
	"encoding/json"
	"strings"
)

// MarshalNoEscape encodes v into JSON without escaping <, >, & into <, etc.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// DecodeObject decodes a JSON object into its top-level members, leaving each
// value raw so callers can type-check fields one at a time.
//
// Models sometimes double-escape unicode ("\\u2013"); when the direct decode
// fails but the unescaped text decodes, that result is used instead. The
// error returned is always the one from the direct attempt.
func DecodeObject(raw []byte) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	err := json.Unmarshal(raw, &obj)
	if err == nil {
		return obj, nil
	}
	if alt, ok := unescapeUnicode(raw); ok {
		var retry map[string]json.RawMessage
		if json.Unmarshal(alt, &retry) == nil {
			return retry, nil
		}
	}
	return nil, err
}

// unescapeUnicode collapses "\\uXXXX" sequences into "\uXXXX".
func unescapeUnicode(raw []byte) ([]byte, bool) {
	s := string(raw)
	if !strings.Contains(s, `\\u`) {
		return nil, false
	}
	return []byte(strings.ReplaceAll(s, `\\u`, `\u`)), true
}

// String decodes a raw member into a string. ok is false when the member is
// absent, null, or not a JSON string.
func String(obj map[string]json.RawMessage, key string) (string, bool) {
	raw, present := member(obj, key)
	if !present {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Bool decodes a raw member into a bool. ok is false when the member is
// absent, null, or not a JSON boolean.
func Bool(obj map[string]json.RawMessage, key string) (bool, bool) {
	raw, present := member(obj, key)
	if !present {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}

// Strings decodes a raw member into a string slice. ok is false when the
// member is absent, null, not an array, or holds anything but strings
// (null elements included).
func Strings(obj map[string]json.RawMessage, key string) ([]string, bool) {
	raw, present := member(obj, key)
	if !present {
		return nil, false
	}
	var ptrs []*string
	if err := json.Unmarshal(raw, &ptrs); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(ptrs))
	for _, p := range ptrs {
		if p == nil {
			return nil, false
		}
		out = append(out, *p)
	}
	return out, true
}

// member returns the raw value for key, treating an explicit null as absent.
func member(obj map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, present := obj[key]
	if !present || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}
