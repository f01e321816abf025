package rules

// Anomaly thresholds from the security engine's third rule (spec §4.12):
// spans that run unusually long or burn an unusual number of tokens are
// flagged LOW severity regardless of content.
const (
	MaxDurationSeconds = 300
	MaxTotalTokens      = 32000
)

// AnomalyResult reports a single anomaly finding.
type AnomalyResult struct {
	RuleName    string
	Description string
}

// CheckAnomaly evaluates a span's duration and token usage against fixed
// thresholds, returning zero, one, or two findings (a span can be both slow
// and token-heavy).
func CheckAnomaly(durationMs int64, totalTokens int) []AnomalyResult {
	var out []AnomalyResult
	if durationMs > MaxDurationSeconds*1000 {
		out = append(out, AnomalyResult{
			RuleName:    "Long-running span",
			Description: "Span duration exceeded 300s threshold",
		})
	}
	if totalTokens > MaxTotalTokens {
		out = append(out, AnomalyResult{
			RuleName:    "High token usage",
			Description: "Span token usage exceeded 32000 threshold",
		})
	}
	return out
}
