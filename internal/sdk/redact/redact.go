// Package redact implements the regex-based PII scrubber that runs on every
// span's attributes before export (spec §4.1, §8 PII invariant). It is the
// SDK-side counterpart to the security worker's detection-only rules in
// internal/modules/security/rules, grounded on
// _examples/original_source/.../sanitizer.py.
package redact

import "regexp"

const (
	RedactedSSN        = "[REDACTED_SSN]"
	RedactedEmail      = "[REDACTED_EMAIL]"
	RedactedCC         = "[REDACTED_CC]"
	RedactedPhone      = "[REDACTED_PHONE]"
	RedactedAWSKey     = "[REDACTED_AWS_KEY]"
	RedactedOpenAIKey  = "[REDACTED_OPENAI_KEY]"
	RedactedGenericKey = "[REDACTED_API_KEY]"
)

type pattern struct {
	re          *regexp.Regexp
	replacement string
}

// patterns is evaluated in order so that more specific formats (API keys,
// credit cards) are replaced before looser ones (generic digit runs) could
// otherwise partially match them.
var patterns = []pattern{
	{regexp.MustCompile(`\b\d{3}[-\s]\d{2}[-\s]\d{4}\b`), RedactedSSN},
	{regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`), RedactedCC},
	{regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{20,}\b`), RedactedOpenAIKey},
	{regexp.MustCompile(`\b(?:AKIA|AIDA|AROA|ABIA|ACCA)[A-Z0-9]{16}\b`), RedactedAWSKey},
	{regexp.MustCompile(`(?i)(?:aws[_-]?secret[_-]?access[_-]?key|secret[_-]?key|aws[_-]?secret)[\s]*[=:][\s]*['"]?([A-Za-z0-9/+=]{40})['"]?`), RedactedAWSKey},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), RedactedEmail},
	{regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]?)?(?:\(\d{3}\)|\d{3})[-.\s]?\d{3}[-.\s]?\d{4}\b`), RedactedPhone},
	{regexp.MustCompile(`(?i)(?:api[_-]?key|api[_-]?secret|access[_-]?token|auth[_-]?token|bearer)[\s]*[=:]\s*['"]?([A-Za-z0-9_\-./+=]{16,})['"]?`), RedactedGenericKey},
}

// String scrubs a single value, replacing any matched PII with a typed
// [REDACTED_*] token. The scrubbed result's length is bounded by a constant
// multiple of the input length since every substitution is no longer than
// the pattern it replaces grows the string.
func String(value string) string {
	result := value
	for _, p := range patterns {
		result = p.re.ReplaceAllString(result, p.replacement)
	}
	return result
}

// Attributes returns a new map with PII scrubbed from every string value.
// The input map is never mutated.
func Attributes(attrs map[string]string) map[string]string {
	if len(attrs) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = String(v)
	}
	return out
}
