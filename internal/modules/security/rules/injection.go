// Package rules implements the security engine's detection rules (spec
// §4.12), grounded on _examples/original_source's workers/rules/*.py.
package rules

import "regexp"

// injectionPatterns are matched case-insensitively against the checkable
// text assembled from a span's prompt/completion/event content.
var injectionPatterns = compilePatterns([]string{
	"ignore previous instructions",
	"fail to recall",
	"system prompt",
	"you are not a",
	"DAN mode",
	"jailbreak",
	"dev mode",
	"roleplay as",
})

func compilePatterns(phrases []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(phrases))
	for i, p := range phrases {
		out[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(p))
	}
	return out
}

// InjectionResult reports a prompt-injection score (0-100) and whether it
// crosses the alerting threshold.
type InjectionResult struct {
	Score    int
	Alert    bool
	Severity string // "HIGH" or "MEDIUM", only meaningful when Alert
}

// CheckInjection scores text by counting injection-pattern matches, 40
// points per match capped at 100. A score over 50 raises an alert; over 80
// is HIGH severity, otherwise MEDIUM.
func CheckInjection(text string) InjectionResult {
	matches := 0
	for _, re := range injectionPatterns {
		if re.MatchString(text) {
			matches++
		}
	}
	score := matches * 40
	if score > 100 {
		score = 100
	}

	if score <= 50 {
		return InjectionResult{Score: score}
	}
	severity := "MEDIUM"
	if score > 80 {
		severity = "HIGH"
	}
	return InjectionResult{Score: score, Alert: true, Severity: severity}
}
