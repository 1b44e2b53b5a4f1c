// Package extract recovers a JSON object from free-text model output.
//
// It handles exactly two failure modes seen from vision models: markdown code
// fences around the payload and raw control characters inside string values.
// Anything else that is malformed (trailing commas, single quotes, ...) is
// reported as a ParseError rather than repaired.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

const msgNoJSON = "No JSON in response"

var (
	reFenceLang = regexp.MustCompile("(?i)```json\\s*")
	reFence     = regexp.MustCompile("```\\s*")
	reStringLit = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)

	controlEscaper = strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`)
)

// ParseError means no usable JSON object could be recovered from the text.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// Extract returns the first-{ to last-} object found in raw, after fence
// stripping and control-character repair.
func Extract(raw string) (map[string]any, error) {
	candidate, err := Candidate(raw)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(candidate), &out); err != nil {
		return nil, &ParseError{Reason: "invalid JSON in response", Err: err}
	}
	if out == nil {
		return nil, &ParseError{Reason: msgNoJSON}
	}
	return out, nil
}

// Candidate performs steps 1-3 (fences, span, repair) and returns the text
// that would be handed to the JSON decoder.
func Candidate(raw string) (string, error) {
	txt := reFenceLang.ReplaceAllString(raw, "")
	txt = reFence.ReplaceAllString(txt, "")
	txt = strings.TrimSpace(txt)

	start := strings.IndexByte(txt, '{')
	end := strings.LastIndexByte(txt, '}')
	if start < 0 || end < start {
		return "", &ParseError{Reason: msgNoJSON}
	}
	return repairStrings(txt[start : end+1]), nil
}

// repairStrings escapes literal newline, carriage return and tab inside
// every quoted string literal.
func repairStrings(s string) string {
	return reStringLit.ReplaceAllStringFunc(s, func(lit string) string {
		inner := lit[1 : len(lit)-1]
		return `"` + controlEscaper.Replace(inner) + `"`
	})
}
