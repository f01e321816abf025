// Package pricing holds the static per-model USD pricing table used to cost
// out LLM spans (spec §4.11), grounded on
// _examples/original_source's cost_calculator.py PRICING dict.
package pricing

import "strings"

// Rate is the USD cost per 1,000 tokens for a model's prompt and completion
// tokens.
type Rate struct {
	InputPer1K  float64
	OutputPer1K float64
}

// table is evaluated via substring match against the span's reported model
// name, so "gpt-4-0613" still matches the "gpt-4" entry.
var table = map[string]Rate{
	"gpt-4-turbo":     {InputPer1K: 0.01, OutputPer1K: 0.03},
	"gpt-4o":          {InputPer1K: 0.005, OutputPer1K: 0.015},
	"gpt-4":           {InputPer1K: 0.03, OutputPer1K: 0.06},
	"gpt-3.5-turbo":   {InputPer1K: 0.0005, OutputPer1K: 0.0015},
	"claude-3-opus":   {InputPer1K: 0.015, OutputPer1K: 0.075},
	"claude-3-sonnet": {InputPer1K: 0.003, OutputPer1K: 0.015},
	"claude-3-haiku":  {InputPer1K: 0.00025, OutputPer1K: 0.00125},
}

// orderedKeys controls match precedence: longer, more specific model names
// (gpt-4-turbo, gpt-4o) must be checked before the bare "gpt-4" substring
// they would otherwise also match.
var orderedKeys = []string{
	"gpt-4-turbo", "gpt-4o", "gpt-4",
	"gpt-3.5-turbo",
	"claude-3-opus", "claude-3-sonnet", "claude-3-haiku",
}

// Lookup returns the pricing rate for model via substring match, or false
// if no known model name appears in it.
func Lookup(model string) (Rate, bool) {
	lower := strings.ToLower(model)
	for _, key := range orderedKeys {
		if strings.Contains(lower, key) {
			return table[key], true
		}
	}
	return Rate{}, false
}

// Cost computes the USD cost of a completion given its prompt/completion
// token counts, or (0, false) when the model is unrecognized or both token
// counts are zero.
func Cost(model string, promptTokens, completionTokens int) (float64, bool) {
	if model == "" || (promptTokens == 0 && completionTokens == 0) {
		return 0, false
	}
	rate, ok := Lookup(model)
	if !ok {
		return 0, false
	}
	cost := float64(promptTokens)/1000*rate.InputPer1K + float64(completionTokens)/1000*rate.OutputPer1K
	return cost, true
}
