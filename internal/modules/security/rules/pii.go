package rules

import "regexp"

// piiPatterns maps a detection type name to the regex that finds it.
// Evidence is never returned verbatim — callers get only the type name and
// a hardcoded "REDACTED" placeholder, matching the original engine.
var piiPatterns = map[string]*regexp.Regexp{
	"EMAIL":       regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	"SSN":         regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	"CREDIT_CARD": regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`),
	"AWS_KEY":     regexp.MustCompile(`\b(?:AKIA|AIDA|AROA|ABIA|ACCA)[A-Z0-9]{16}\b`),
	"OPENAI_KEY":  regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{20,}\b`),
}

// PIIResult reports which PII types were found and the resulting severity.
type PIIResult struct {
	Detected []string
	Evidence string // always "REDACTED" when Detected is non-empty
	Severity string // "CRITICAL" if AWS_KEY or SSN present, else "HIGH"
}

// CheckPII scans text for every known PII pattern.
func CheckPII(text string) PIIResult {
	var detected []string
	for name, re := range piiPatterns {
		if re.MatchString(text) {
			detected = append(detected, name)
		}
	}
	if len(detected) == 0 {
		return PIIResult{}
	}

	severity := "HIGH"
	for _, d := range detected {
		if d == "AWS_KEY" || d == "SSN" {
			severity = "CRITICAL"
			break
		}
	}
	return PIIResult{Detected: detected, Evidence: "REDACTED", Severity: severity}
}
